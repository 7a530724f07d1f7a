// Package auth implements dual-mode SASL authentication negotiation for a
// storage cluster migrating from simple (no-credential) to Kerberos (GSSAPI)
// authentication.
//
// During the migration window both mechanisms are accepted on the same
// endpoint. Each connection gets one Session; the Session inspects the first
// handshake bytes, decides which mechanism the client intends to use,
// enforces the configured policy (mechanism allowed, host allowed), and
// delegates the rest of the handshake to the matching Mechanism
// implementation:
//
//   - DetectMode: classifies the initial handshake payload
//   - Policy: allow/deny decisions against the immutable AuthConfig
//   - Session: the per-connection negotiation state machine
//   - Registry: one-time process wiring (config, Kerberos provider, metrics)
//
// Sub-packages:
//   - kerberos/: GSSAPI acceptor built on gokrb5 (keytab, AP-REQ verification)
//
// Monitoring: every terminal outcome is recorded into a shared
// metrics.AuthMetrics handle so migration progress can be tracked while
// simple auth is being phased out.
package auth
