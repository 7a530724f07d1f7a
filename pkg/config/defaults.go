package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default values for the authentication policy.
//
// Dual-mode negotiation ships disabled; enabling it with both mechanisms
// allowed opens the migration window. The default simple-auth identity is
// "guest" so that unmapped legacy clients are clearly distinguishable in
// audit logs.
const (
	DefaultEnabled           = false
	DefaultAllowSimple       = true
	DefaultAllowKerberos     = true
	DefaultSimpleUser        = "guest"
	DefaultSimpleUserMapping = true
	DefaultMetricsEnabled    = true
	DefaultKrb5Conf          = "/etc/krb5.conf"
	DefaultMaxClockSkew      = 5 * time.Minute
)

// setDefaults registers default values on the viper instance. Booleans that
// default to true must go through viper: after unmarshal an explicit false
// and a missing key are indistinguishable on the struct.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("auth.enabled", DefaultEnabled)
	v.SetDefault("auth.allow_simple", DefaultAllowSimple)
	v.SetDefault("auth.allow_kerberos", DefaultAllowKerberos)
	v.SetDefault("auth.simple_default_user", DefaultSimpleUser)
	v.SetDefault("auth.simple_user_mapping", DefaultSimpleUserMapping)
	v.SetDefault("auth.metrics_enabled", DefaultMetricsEnabled)

	v.SetDefault("kerberos.krb5_conf", DefaultKrb5Conf)
	v.SetDefault("kerberos.max_clock_skew", DefaultMaxClockSkew)
}

// ApplyDefaults fills in any remaining zero values after unmarshal.
//
// String and duration fields are safe to default here (their zero value is
// never a meaningful setting); boolean defaults live in setDefaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Auth.SimpleDefaultUser == "" {
		cfg.Auth.SimpleDefaultUser = DefaultSimpleUser
	}

	if cfg.Kerberos.Krb5Conf == "" {
		cfg.Kerberos.Krb5Conf = DefaultKrb5Conf
	}
	if cfg.Kerberos.MaxClockSkew == 0 {
		cfg.Kerberos.MaxClockSkew = DefaultMaxClockSkew
	}
}

// GetDefaultConfig returns a configuration populated entirely from defaults.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Auth: AuthConfig{
			Enabled:           DefaultEnabled,
			AllowSimple:       DefaultAllowSimple,
			AllowKerberos:     DefaultAllowKerberos,
			SimpleUserMapping: DefaultSimpleUserMapping,
			MetricsEnabled:    DefaultMetricsEnabled,
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
