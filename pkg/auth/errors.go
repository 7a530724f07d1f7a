package auth

import "errors"

var (
	// ErrKerberosDisabled means the client attempted GSSAPI but Kerberos
	// auth is switched off in the configuration.
	ErrKerberosDisabled = errors.New("auth: kerberos authentication is disabled")

	// ErrSimpleDisabled means the client attempted simple auth but the
	// migration window is closed.
	ErrSimpleDisabled = errors.New("auth: simple authentication is disabled")

	// ErrHostNotAllowed means simple auth is enabled but the client host is
	// not covered by the configured allow list.
	ErrHostNotAllowed = errors.New("auth: host not allowed for simple authentication")

	// ErrKerberosUnavailable means the GSSAPI path was selected but no
	// Kerberos provider is wired (missing keytab or principal).
	ErrKerberosUnavailable = errors.New("auth: kerberos provider not available")

	// ErrUnknownMode means policy was asked about a mode value outside the
	// known set.
	ErrUnknownMode = errors.New("auth: unknown authentication mode")

	// ErrNoModeSelected is returned by Wrap/Unwrap before the first
	// Evaluate call has picked a mechanism.
	ErrNoModeSelected = errors.New("auth: no authentication mode selected")

	// ErrSessionClosed is returned for any operation on a closed session.
	ErrSessionClosed = errors.New("auth: session is closed")

	// ErrNotInitialized is returned by Registry.NewSession before
	// Initialize has been called.
	ErrNotInitialized = errors.New("auth: registry not initialized")

	// ErrNotEnabled is returned when sessions are requested while
	// authentication is disabled in the configuration.
	ErrNotEnabled = errors.New("auth: authentication is not enabled")

	// ErrUnsupportedMechanism is returned by NewSessionFor when the
	// requested SASL mechanism name is not one this negotiator handles.
	ErrUnsupportedMechanism = errors.New("auth: unsupported mechanism")
)
