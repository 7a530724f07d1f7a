package auth

import (
	"errors"
	"testing"

	"github.com/marmos91/saslgate/pkg/config"
)

func TestPolicyMechanismToggles(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AuthConfig
		mode    Mode
		host    string
		wantErr error
	}{
		{
			name:    "kerberos allowed",
			cfg:     config.AuthConfig{AllowKerberos: true},
			mode:    ModeKerberos,
			wantErr: nil,
		},
		{
			name:    "kerberos disabled",
			cfg:     config.AuthConfig{AllowSimple: true},
			mode:    ModeKerberos,
			wantErr: ErrKerberosDisabled,
		},
		{
			name:    "simple allowed",
			cfg:     config.AuthConfig{AllowSimple: true},
			mode:    ModeSimple,
			host:    "10.0.0.5",
			wantErr: nil,
		},
		{
			name:    "simple disabled",
			cfg:     config.AuthConfig{AllowKerberos: true},
			mode:    ModeSimple,
			host:    "10.0.0.5",
			wantErr: ErrSimpleDisabled,
		},
		{
			name:    "anonymous follows simple toggle",
			cfg:     config.AuthConfig{AllowKerberos: true},
			mode:    ModeAnonymous,
			wantErr: ErrSimpleDisabled,
		},
		{
			name: "simple disabled checked before host list",
			cfg: config.AuthConfig{
				AllowKerberos:      true,
				SimpleAllowedHosts: []string{"192.168.1.1"},
			},
			mode:    ModeSimple,
			host:    "10.0.0.5",
			wantErr: ErrSimpleDisabled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPolicy(tt.cfg)
			err := p.Validate(tt.mode, tt.host)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%v, %q) = %v, want %v", tt.mode, tt.host, err, tt.wantErr)
			}
		})
	}
}

func TestPolicyHostMatching(t *testing.T) {
	tests := []struct {
		name    string
		hosts   []string
		client  string
		allowed bool
	}{
		{"empty set allows all", nil, "anywhere.example.com", true},
		{"exact match", []string{"10.0.0.5"}, "10.0.0.5", true},
		{"exact mismatch", []string{"10.0.0.5"}, "10.0.0.6", false},
		{"prefix pattern match", []string{"10.0.1.*"}, "10.0.1.42", true},
		{"prefix pattern mismatch", []string{"10.0.1.*"}, "10.0.2.42", false},
		{"hostname prefix", []string{"legacy-*"}, "legacy-batch-03", true},
		{"matching is case sensitive", []string{"Legacy-Host"}, "legacy-host", false},
		{"unknown origin never matches non-empty set", []string{"10.0.1.*"}, "", false},
		{"unknown origin with empty set", nil, "", true},
		{"bare wildcard allows all", []string{"*"}, "anywhere", true},
		{"wildcard among entries allows all", []string{"10.0.0.1", "*"}, "172.16.0.9", true},
		{"second entry matches", []string{"10.9.9.9", "10.0.1.*"}, "10.0.1.7", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPolicy(config.AuthConfig{
				AllowSimple:        true,
				SimpleAllowedHosts: tt.hosts,
			})
			err := p.Validate(ModeSimple, tt.client)
			if tt.allowed && err != nil {
				t.Errorf("Validate(simple, %q) = %v, want allow", tt.client, err)
			}
			if !tt.allowed && !errors.Is(err, ErrHostNotAllowed) {
				t.Errorf("Validate(simple, %q) = %v, want ErrHostNotAllowed", tt.client, err)
			}
		})
	}
}

func TestPolicyIgnoresBlankEntries(t *testing.T) {
	p := NewPolicy(config.AuthConfig{
		AllowSimple:        true,
		SimpleAllowedHosts: []string{"  ", "", "10.0.0.1"},
	})
	if err := p.Validate(ModeSimple, "10.0.0.1"); err != nil {
		t.Errorf("Validate = %v, want allow", err)
	}
	if err := p.Validate(ModeSimple, "10.0.0.2"); !errors.Is(err, ErrHostNotAllowed) {
		t.Errorf("Validate = %v, want ErrHostNotAllowed", err)
	}
}
