package kerberos

import (
	"bytes"
	"testing"
)

func TestExtractAPReqStripsGSSWrapper(t *testing.T) {
	apReq := []byte{0x6e, 0x10, 0x30, 0x0e, 0x01, 0x02, 0x03}
	token := wrapGSSToken(apReq, tokenIDAPReq)

	got, err := extractAPReq(token)
	if err != nil {
		t.Fatalf("extractAPReq() error = %v", err)
	}
	if !bytes.Equal(got, apReq) {
		t.Errorf("extractAPReq() = %x, want %x", got, apReq)
	}
}

func TestExtractAPReqRawPassthrough(t *testing.T) {
	// A token not starting with 0x60 is treated as a raw AP-REQ.
	raw := []byte{0x6e, 0x82, 0x01, 0x00, 0x30}
	got, err := extractAPReq(raw)
	if err != nil {
		t.Fatalf("extractAPReq() error = %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("extractAPReq() = %x, want passthrough", got)
	}
}

func TestExtractAPReqRejectsWrongTokenID(t *testing.T) {
	token := wrapGSSToken([]byte{0x6f, 0x03}, tokenIDAPRep)
	if _, err := extractAPReq(token); err == nil {
		t.Fatal("expected error for AP-REP token ID")
	}
}

func TestExtractAPReqRejectsShortToken(t *testing.T) {
	if _, err := extractAPReq([]byte{0x60}); err == nil {
		t.Fatal("expected error for 1-byte token")
	}
	if _, err := extractAPReq([]byte{0x60, 0x7f}); err == nil {
		t.Fatal("expected error for truncated token")
	}
}

func TestWrapGSSTokenStructure(t *testing.T) {
	inner := []byte{0xde, 0xad, 0xbe, 0xef}
	token := wrapGSSToken(inner, tokenIDAPRep)

	if token[0] != 0x60 {
		t.Errorf("token[0] = 0x%02x, want 0x60", token[0])
	}
	// Short-form length for a small token.
	wantLen := len(krb5OID) + 2 + len(inner)
	if int(token[1]) != wantLen {
		t.Errorf("encoded length = %d, want %d", token[1], wantLen)
	}
	if !bytes.Equal(token[2:2+len(krb5OID)], krb5OID) {
		t.Error("krb5 OID missing after length")
	}
	idOff := 2 + len(krb5OID)
	if token[idOff] != 0x02 || token[idOff+1] != 0x00 {
		t.Errorf("token ID = 0x%02x%02x, want 0x0200", token[idOff], token[idOff+1])
	}
	if !bytes.Equal(token[idOff+2:], inner) {
		t.Error("inner token not preserved")
	}
}

func TestASN1LengthRoundTrip(t *testing.T) {
	for _, length := range []int{0, 1, 127, 128, 255, 256, 65535, 1 << 20} {
		encoded := encodeASN1Length(length)
		got, consumed, err := parseASN1Length(encoded)
		if err != nil {
			t.Fatalf("parseASN1Length(%d) error = %v", length, err)
		}
		if got != length || consumed != len(encoded) {
			t.Errorf("round trip of %d: got %d (consumed %d of %d)", length, got, consumed, len(encoded))
		}
	}
}

func TestParseASN1LengthErrors(t *testing.T) {
	if _, _, err := parseASN1Length(nil); err == nil {
		t.Error("expected error for empty length")
	}
	if _, _, err := parseASN1Length([]byte{0x85, 0x01, 0x02, 0x03, 0x04, 0x05}); err == nil {
		t.Error("expected error for 5-byte long form")
	}
	if _, _, err := parseASN1Length([]byte{0x82, 0x01}); err == nil {
		t.Error("expected error for truncated long form")
	}
}
