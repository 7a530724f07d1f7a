package kerberos

import (
	"encoding/asn1"
	"fmt"

	"github.com/jcmturner/gokrb5/v8/asn1tools"
	"github.com/jcmturner/gokrb5/v8/crypto"
	"github.com/jcmturner/gokrb5/v8/messages"
	"github.com/jcmturner/gokrb5/v8/types"
)

// krb5 token IDs per RFC 1964 section 1.1.
const (
	tokenIDAPReq uint16 = 0x0100
	tokenIDAPRep uint16 = 0x0200
)

// krb5OID is the ASN.1 encoded OID for the Kerberos V5 mechanism,
// 1.2.840.113554.1.2.2.
var krb5OID = []byte{0x06, 0x09, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x12, 0x01, 0x02, 0x02}

// extractAPReq strips the GSS-API initial context token wrapper if present.
//
// GSS-API initial context tokens (RFC 2743 section 3.1) have the format:
//
//	0x60 [length] 0x06 [OID-length] [OID-bytes] [token ID] [inner-token]
//
// The 2-byte token ID must be 0x01 0x00 (AP-REQ). A token that does not
// start with 0x60 is treated as a raw AP-REQ.
func extractAPReq(token []byte) ([]byte, error) {
	if len(token) < 2 {
		return nil, fmt.Errorf("token too short: %d bytes", len(token))
	}
	if token[0] != 0x60 {
		return token, nil
	}

	offset := 1
	length, bytesRead, err := parseASN1Length(token[offset:])
	if err != nil {
		return nil, fmt.Errorf("parse GSS token length: %w", err)
	}
	offset += bytesRead

	if offset+length > len(token) {
		return nil, fmt.Errorf("GSS token truncated: expected %d bytes, have %d", offset+length, len(token))
	}

	if offset >= len(token) || token[offset] != 0x06 {
		return nil, fmt.Errorf("expected OID tag 0x06 at offset %d", offset)
	}
	offset++

	if offset >= len(token) {
		return nil, fmt.Errorf("truncated OID length")
	}
	oidLen := int(token[offset])
	offset++
	offset += oidLen
	if offset > len(token) {
		return nil, fmt.Errorf("truncated after OID")
	}

	if offset+2 > len(token) {
		return nil, fmt.Errorf("truncated token ID")
	}
	tokenID := (uint16(token[offset]) << 8) | uint16(token[offset+1])
	if tokenID != tokenIDAPReq {
		return nil, fmt.Errorf("unexpected krb5 token ID: 0x%04x (expected 0x0100 for AP-REQ)", tokenID)
	}
	offset += 2

	return token[offset:], nil
}

// buildAPRep constructs the AP-REP token for mutual authentication.
//
// Per RFC 4120 section 5.5.2 the EncAPRepPart (APPLICATION 27) echoes the
// authenticator's ctime and cusec, proving the ticket was decrypted. If the
// client sent a subkey it is echoed back so the client knows which key the
// acceptor will use for protection. The EncAPRepPart is encrypted with key
// usage 12 and the AP-REP (APPLICATION 15) is wrapped in a GSS MechToken
// with token ID 0x02 0x00.
func buildAPRep(apReq messages.APReq, sessionKey types.EncryptionKey) ([]byte, error) {
	encAPRepPart := messages.EncAPRepPart{
		CTime: apReq.Authenticator.CTime,
		Cusec: apReq.Authenticator.Cusec,
	}
	if hasSubkey(apReq) {
		encAPRepPart.Subkey = apReq.Authenticator.SubKey
	}

	encAPRepPartInner, err := asn1.Marshal(encAPRepPart)
	if err != nil {
		return nil, fmt.Errorf("marshal EncAPRepPart: %w", err)
	}
	encAPRepPartBytes := asn1tools.AddASNAppTag(encAPRepPartInner, 27)

	// Key usage 12 is the AP-REP encrypted part (RFC 4120 section 7.5.1).
	encryptedData, err := crypto.GetEncryptedData(encAPRepPartBytes, sessionKey, 12, 0)
	if err != nil {
		return nil, fmt.Errorf("encrypt EncAPRepPart: %w", err)
	}

	apRep := messages.APRep{
		PVNO:    5,
		MsgType: 15,
		EncPart: encryptedData,
	}
	apRepInner, err := asn1.Marshal(apRep)
	if err != nil {
		return nil, fmt.Errorf("marshal AP-REP: %w", err)
	}
	apRepBytes := asn1tools.AddASNAppTag(apRepInner, 15)

	return wrapGSSToken(apRepBytes, tokenIDAPRep), nil
}

// wrapGSSToken wraps a Kerberos message in a GSS-API MechToken:
// 0x60 [length] [krb5 OID] [token ID] [inner token].
func wrapGSSToken(innerToken []byte, tokenID uint16) []byte {
	tokenIDBytes := []byte{byte(tokenID >> 8), byte(tokenID & 0xFF)}

	innerContent := make([]byte, 0, len(krb5OID)+len(tokenIDBytes)+len(innerToken))
	innerContent = append(innerContent, krb5OID...)
	innerContent = append(innerContent, tokenIDBytes...)
	innerContent = append(innerContent, innerToken...)

	lengthBytes := encodeASN1Length(len(innerContent))

	result := make([]byte, 0, 1+len(lengthBytes)+len(innerContent))
	result = append(result, 0x60)
	result = append(result, lengthBytes...)
	result = append(result, innerContent...)
	return result
}

// encodeASN1Length encodes a length value in ASN.1 BER format.
func encodeASN1Length(length int) []byte {
	if length < 128 {
		return []byte{byte(length)}
	}
	var lengthBytes []byte
	for length > 0 {
		lengthBytes = append([]byte{byte(length & 0xFF)}, lengthBytes...)
		length >>= 8
	}
	return append([]byte{byte(0x80 | len(lengthBytes))}, lengthBytes...)
}

// parseASN1Length parses an ASN.1 length field, returning the value and the
// number of bytes consumed.
func parseASN1Length(data []byte) (int, int, error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("empty length field")
	}

	first := data[0]
	if first < 0x80 {
		return int(first), 1, nil
	}

	numBytes := int(first & 0x7f)
	if numBytes == 0 || numBytes > 4 {
		return 0, 0, fmt.Errorf("invalid ASN.1 length: %d bytes", numBytes)
	}
	if 1+numBytes > len(data) {
		return 0, 0, fmt.Errorf("truncated ASN.1 length")
	}

	length := 0
	for i := 1; i <= numBytes; i++ {
		length = (length << 8) | int(data[i])
	}
	return length, 1 + numBytes, nil
}

// hasSubkey reports whether the authenticator carries a usable subkey.
func hasSubkey(apReq messages.APReq) bool {
	return apReq.Authenticator.SubKey.KeyType != 0 &&
		len(apReq.Authenticator.SubKey.KeyValue) > 0
}
