package auth

import "bytes"

// gssAPIApplicationTag is the first byte of a GSS-API initial context token:
// ASN.1 APPLICATION 0 constructed (RFC 2743 section 3.1).
const gssAPIApplicationTag = 0x60

var gssapiMarker = []byte("GSSAPI")

// DetectMode classifies the first handshake payload of a connection.
//
// A well-formed GSSAPI initial token always starts with the ASN.1
// APPLICATION 0 tag. As a fallback the payload is scanned for the literal
// mechanism name, which some clients send in a pre-negotiation header.
// Everything else, including an empty payload, is treated as simple auth.
//
// The substring fallback can misclassify a simple payload that happens to
// contain "GSSAPI" (for instance a username). Callers that know the
// mechanism out of band should use ModeFromMechanism instead.
func DetectMode(initial []byte) Mode {
	if len(initial) == 0 {
		return ModeSimple
	}
	if initial[0] == gssAPIApplicationTag {
		return ModeKerberos
	}
	if bytes.Contains(initial, gssapiMarker) {
		return ModeKerberos
	}
	return ModeSimple
}
