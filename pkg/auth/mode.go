package auth

import "strings"

// Mode identifies which authentication mechanism a connection is using.
type Mode int

const (
	// ModeKerberos is full GSSAPI/Kerberos authentication.
	ModeKerberos Mode = iota
	// ModeSimple is legacy no-credential authentication.
	ModeSimple
	// ModeAnonymous is explicit anonymous access.
	ModeAnonymous
)

// String returns the SASL mechanism name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeKerberos:
		return "GSSAPI"
	case ModeSimple:
		return "SIMPLE"
	case ModeAnonymous:
		return "ANONYMOUS"
	default:
		return "UNKNOWN"
	}
}

// Secure reports whether the mode provides cryptographic authentication.
func (m Mode) Secure() bool {
	return m == ModeKerberos
}

// RequiresKerberos reports whether the mode needs Kerberos infrastructure
// (keytab, KDC reachability) to complete.
func (m Mode) RequiresKerberos() bool {
	return m == ModeKerberos
}

// ModeFromMechanism maps a SASL mechanism name to a Mode. PLAIN is treated
// as simple auth; unrecognized names fall back to simple so a misconfigured
// legacy client still lands on the strictest policy checks the migration
// window applies.
func ModeFromMechanism(mechanism string) Mode {
	switch strings.ToUpper(strings.TrimSpace(mechanism)) {
	case "GSSAPI":
		return ModeKerberos
	case "SIMPLE", "PLAIN":
		return ModeSimple
	case "ANONYMOUS":
		return ModeAnonymous
	default:
		return ModeSimple
	}
}
