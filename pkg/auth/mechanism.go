package auth

// Mechanism is the handshake delegate a Session hands control to once a
// mode has been selected. Implementations are single-connection and not
// safe for concurrent use; the Session serializes access.
type Mechanism interface {
	// Evaluate processes one client token and returns the challenge to
	// send back, or nil when no response is needed.
	Evaluate(token []byte) ([]byte, error)

	// Complete reports whether the handshake has finished successfully.
	Complete() bool

	// AuthorizationID returns the authenticated identity. Only meaningful
	// once Complete reports true.
	AuthorizationID() string

	// Wrap applies the negotiated integrity/confidentiality protection to
	// an outgoing message.
	Wrap(data []byte) ([]byte, error)

	// Unwrap removes protection from an incoming message.
	Unwrap(data []byte) ([]byte, error)

	// Close releases any per-connection state.
	Close() error
}
