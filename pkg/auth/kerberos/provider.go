package kerberos

import (
	"fmt"
	"os"
	"sync"
	"time"

	krb5config "github.com/jcmturner/gokrb5/v8/config"
	"github.com/jcmturner/gokrb5/v8/keytab"
	"github.com/marmos91/saslgate/pkg/auth"
	"github.com/marmos91/saslgate/pkg/config"
)

// Provider manages the keytab, krb5.conf, and service principal shared by
// all Kerberos sessions.
//
// Thread safety: all methods are safe for concurrent use. The keytab can be
// swapped at runtime via ReloadKeytab without disrupting sessions created
// earlier; those keep the keytab they were verified against.
type Provider struct {
	keytab           *keytab.Keytab
	krb5Conf         *krb5config.Config
	servicePrincipal string
	maxClockSkew     time.Duration
	keytabPath       string
	mu               sync.RWMutex
}

// NewProvider loads the keytab and krb5.conf described by the configuration.
//
// Environment variables take precedence over config file values:
//   - SASLGATE_KERBEROS_KEYTAB overrides KeytabPath
//   - SASLGATE_KERBEROS_PRINCIPAL overrides ServicePrincipal
//   - SASLGATE_KERBEROS_KRB5CONF overrides Krb5Conf
func NewProvider(cfg *config.KerberosConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("kerberos config is nil")
	}

	keytabPath := resolveKeytabPath(cfg.KeytabPath)
	if keytabPath == "" {
		return nil, fmt.Errorf("kerberos keytab path not configured (set keytab_path or SASLGATE_KERBEROS_KEYTAB)")
	}

	servicePrincipal := resolveServicePrincipal(cfg.ServicePrincipal)
	if servicePrincipal == "" {
		return nil, fmt.Errorf("kerberos service principal not configured (set service_principal or SASLGATE_KERBEROS_PRINCIPAL)")
	}

	kt, err := loadKeytab(keytabPath)
	if err != nil {
		return nil, fmt.Errorf("load keytab %s: %w", keytabPath, err)
	}

	krb5ConfPath := resolveKrb5ConfPath(cfg.Krb5Conf)
	krbCfg, err := krb5config.Load(krb5ConfPath)
	if err != nil {
		return nil, fmt.Errorf("parse krb5.conf %s: %w", krb5ConfPath, err)
	}

	return &Provider{
		keytab:           kt,
		krb5Conf:         krbCfg,
		servicePrincipal: servicePrincipal,
		maxClockSkew:     cfg.MaxClockSkew,
		keytabPath:       keytabPath,
	}, nil
}

// Keytab returns the current keytab.
func (p *Provider) Keytab() *keytab.Keytab {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.keytab
}

// ServicePrincipal returns the configured service principal name.
func (p *Provider) ServicePrincipal() string {
	return p.servicePrincipal
}

// MaxClockSkew returns the maximum allowed clock skew for AP-REQ
// timestamps.
func (p *Provider) MaxClockSkew() time.Duration {
	return p.maxClockSkew
}

// Krb5Config returns the loaded Kerberos configuration.
func (p *Provider) Krb5Config() *krb5config.Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.krb5Conf
}

// ReloadKeytab re-reads the keytab file and atomically swaps it in. This
// supports keytab rotation without restart; new sessions use the new
// keytab, in-flight sessions keep the old one.
func (p *Provider) ReloadKeytab() error {
	kt, err := loadKeytab(p.keytabPath)
	if err != nil {
		return fmt.Errorf("reload keytab %s: %w", p.keytabPath, err)
	}

	p.mu.Lock()
	p.keytab = kt
	p.mu.Unlock()
	return nil
}

// NewMechanism mints the per-connection GSSAPI delegate. It satisfies
// auth.KerberosFactory.
func (p *Provider) NewMechanism() (auth.Mechanism, error) {
	return newSession(&krb5Verifier{provider: p}), nil
}

var _ auth.KerberosFactory = (*Provider)(nil).NewMechanism

// loadKeytab reads and parses a keytab file.
func loadKeytab(path string) (*keytab.Keytab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keytab file: %w", err)
	}

	kt := keytab.New()
	if err := kt.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("parse keytab: %w", err)
	}
	return kt, nil
}

func resolveKeytabPath(configPath string) string {
	if envPath := os.Getenv("SASLGATE_KERBEROS_KEYTAB"); envPath != "" {
		return envPath
	}
	return configPath
}

func resolveServicePrincipal(configPrincipal string) string {
	if envSPN := os.Getenv("SASLGATE_KERBEROS_PRINCIPAL"); envSPN != "" {
		return envSPN
	}
	return configPrincipal
}

func resolveKrb5ConfPath(configPath string) string {
	if envPath := os.Getenv("SASLGATE_KERBEROS_KRB5CONF"); envPath != "" {
		return envPath
	}
	if configPath != "" {
		return configPath
	}
	return "/etc/krb5.conf"
}
