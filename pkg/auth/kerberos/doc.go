// Package kerberos implements the GSSAPI acceptor side of the dual-mode
// negotiation using gokrb5.
//
// The Provider owns the long-lived Kerberos state (keytab, krb5.conf,
// service principal) and can hot-swap the keytab at runtime. Each
// connection gets its own Session, created through Provider.NewMechanism,
// which verifies the client's AP-REQ against the keytab, answers with an
// AP-REP when the client requires mutual authentication, and afterwards
// protects messages with RFC 4121 Wrap tokens.
package kerberos
