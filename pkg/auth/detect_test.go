package auth

import "testing"

func TestDetectMode(t *testing.T) {
	tests := []struct {
		name    string
		initial []byte
		want    Mode
	}{
		{"empty payload", nil, ModeSimple},
		{"gss application tag", []byte{0x60, 0x82, 0x01, 0x00}, ModeKerberos},
		{"mechanism name in payload", []byte("NEGOTIATE GSSAPI v1"), ModeKerberos},
		{"plain username", []byte("alice\x00secret"), ModeSimple},
		{"binary non-gss payload", []byte{0x30, 0x12, 0x00}, ModeSimple},
		{"lowercase gssapi not matched", []byte("gssapi"), ModeSimple},
		{"username containing marker", []byte("GSSAPIfan\x00pw"), ModeKerberos},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMode(tt.initial); got != tt.want {
				t.Errorf("DetectMode(%q) = %v, want %v", tt.initial, got, tt.want)
			}
		})
	}
}

func TestModeFromMechanism(t *testing.T) {
	tests := []struct {
		mechanism string
		want      Mode
	}{
		{"GSSAPI", ModeKerberos},
		{"gssapi", ModeKerberos},
		{"SIMPLE", ModeSimple},
		{"PLAIN", ModeSimple},
		{"ANONYMOUS", ModeAnonymous},
		{"  SIMPLE  ", ModeSimple},
		{"SCRAM-SHA-256", ModeSimple},
		{"", ModeSimple},
	}
	for _, tt := range tests {
		if got := ModeFromMechanism(tt.mechanism); got != tt.want {
			t.Errorf("ModeFromMechanism(%q) = %v, want %v", tt.mechanism, got, tt.want)
		}
	}
}

func TestModeString(t *testing.T) {
	if ModeKerberos.String() != "GSSAPI" {
		t.Errorf("ModeKerberos.String() = %q", ModeKerberos.String())
	}
	if ModeSimple.String() != "SIMPLE" {
		t.Errorf("ModeSimple.String() = %q", ModeSimple.String())
	}
	if !ModeKerberos.Secure() || ModeSimple.Secure() {
		t.Error("only kerberos mode should be secure")
	}
	if !ModeKerberos.RequiresKerberos() || ModeAnonymous.RequiresKerberos() {
		t.Error("only kerberos mode requires kerberos infrastructure")
	}
}
