package auth

import (
	"bytes"
	"testing"
)

func TestSimpleMechanismIdentity(t *testing.T) {
	tests := []struct {
		name        string
		defaultUser string
		userMapping bool
		token       []byte
		want        string
	}{
		{"empty token uses default", "guest", true, nil, "guest"},
		{"plain token first segment", "guest", true, []byte("alice\x00password"), "alice"},
		{"token without separators", "guest", true, []byte("bob"), "bob"},
		{"leading separator falls back", "guest", true, []byte("\x00password"), "guest"},
		{"whitespace segment falls back", "guest", true, []byte("   \x00pw"), "guest"},
		{"mapping disabled ignores token", "guest", false, []byte("alice\x00pw"), "guest"},
		{"three segment plain token", "guest", true, []byte("authz\x00authn\x00pw"), "authz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newSimpleMechanism(tt.defaultUser, tt.userMapping)
			challenge, err := m.Evaluate(tt.token)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if challenge != nil {
				t.Errorf("Evaluate() challenge = %v, want nil", challenge)
			}
			if !m.Complete() {
				t.Error("mechanism should be complete after one token")
			}
			if got := m.AuthorizationID(); got != tt.want {
				t.Errorf("AuthorizationID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSimpleMechanismWrapIsCopy(t *testing.T) {
	m := newSimpleMechanism("guest", true)
	if _, err := m.Evaluate(nil); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	payload := []byte("hello world")
	wrapped, err := m.Wrap(payload)
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}
	if !bytes.Equal(wrapped, payload) {
		t.Errorf("Wrap() = %q, want %q", wrapped, payload)
	}
	wrapped[0] = 'X'
	if payload[0] == 'X' {
		t.Error("Wrap() must return an independent copy")
	}

	unwrapped, err := m.Unwrap(payload)
	if err != nil {
		t.Fatalf("Unwrap() error = %v", err)
	}
	if !bytes.Equal(unwrapped, payload) {
		t.Errorf("Unwrap() = %q, want %q", unwrapped, payload)
	}
}
