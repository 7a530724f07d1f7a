package logger

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so that auth events
// can be aggregated and queried uniformly.
const (
	// Client identification
	KeyClientAddr = "client_addr" // Network address the connection originates from
	KeyUser       = "user"        // Authorization identity established by the handshake
	KeyPrincipal  = "principal"   // Kerberos principal (e.g., "alice@EXAMPLE.COM")

	// Negotiation
	KeyMechanism = "mechanism" // SASL mechanism name: GSSAPI, SIMPLE, ANONYMOUS
	KeyMode      = "mode"      // Selected auth mode
	KeyTokenLen  = "token_len" // Length of the handshake token in bytes

	// Outcome
	KeyError  = "error"  // Error value attached to a failure
	KeyReason = "reason" // Rejection reason label
)
