// Package config loads and validates the saslgate configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (SASLGATE_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/saslgate/internal/logger"
)

// ErrNoModeAllowed is returned by Validate when dual-mode authentication is
// enabled but both mechanisms are disallowed, which would lock out every
// client.
var ErrNoModeAllowed = errors.New("config: at least one auth mode must be allowed when saslgate is enabled")

// Config represents the full saslgate configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging logger.Config `mapstructure:"logging" yaml:"logging"`

	// Auth controls the dual-mode authentication policy.
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`

	// Kerberos holds the server-side Kerberos credential material used by
	// the GSSAPI path. May be left empty when only simple auth is allowed.
	Kerberos KerberosConfig `mapstructure:"kerberos" yaml:"kerberos"`
}

// AuthConfig is the dual-mode authentication policy.
//
// It is immutable after loading: sessions share a single AuthConfig by
// reference and never mutate it.
type AuthConfig struct {
	// Enabled is the master switch for dual-mode negotiation. When false,
	// the registry refuses to create sessions and the host falls back to
	// whatever authentication it had before.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// AllowKerberos permits GSSAPI (ticket-based) handshakes.
	AllowKerberos bool `mapstructure:"allow_kerberos" yaml:"allow_kerberos"`

	// AllowSimple permits legacy no-credential handshakes. This is the flag
	// to turn off once every client has migrated to Kerberos.
	AllowSimple bool `mapstructure:"allow_simple" yaml:"allow_simple"`

	// SimpleAllowedHosts restricts which client addresses may use simple
	// auth. Each entry is an exact address or a trailing-* prefix pattern
	// (e.g. "10.0.1.*"). Empty means all hosts are allowed.
	SimpleAllowedHosts []string `mapstructure:"simple_allowed_hosts" yaml:"simple_allowed_hosts"`

	// SimpleDefaultUser is the authorization identity assigned to simple
	// auth connections that carry no usable username.
	SimpleDefaultUser string `mapstructure:"simple_default_user" validate:"required" yaml:"simple_default_user"`

	// SimpleUserMapping enables extracting the username from the first
	// handshake payload (NUL-separated, first segment). When false the
	// default user is always used.
	SimpleUserMapping bool `mapstructure:"simple_user_mapping" yaml:"simple_user_mapping"`

	// MetricsEnabled gates the Prometheus mirror of the migration counters.
	MetricsEnabled bool `mapstructure:"metrics_enabled" yaml:"metrics_enabled"`
}

// KerberosConfig holds Kerberos credential material for the GSSAPI acceptor.
//
// Environment variable overrides:
//
//	SASLGATE_KERBEROS_KEYTAB_PATH       overrides KeytabPath
//	SASLGATE_KERBEROS_SERVICE_PRINCIPAL overrides ServicePrincipal
//	SASLGATE_KERBEROS_KRB5_CONF         overrides Krb5Conf
type KerberosConfig struct {
	// KeytabPath is the path to the service keytab file.
	KeytabPath string `mapstructure:"keytab_path" yaml:"keytab_path"`

	// ServicePrincipal is the SPN the keytab entries belong to
	// (e.g. "storage/node1.example.com@EXAMPLE.COM").
	ServicePrincipal string `mapstructure:"service_principal" yaml:"service_principal"`

	// Krb5Conf is the path to krb5.conf. Defaults to /etc/krb5.conf.
	Krb5Conf string `mapstructure:"krb5_conf" yaml:"krb5_conf"`

	// MaxClockSkew is the maximum tolerated clock difference when
	// validating tickets.
	MaxClockSkew time.Duration `mapstructure:"max_clock_skew" validate:"omitempty,gt=0" yaml:"max_clock_skew"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses the default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	// A missing config file is fine: defaults plus env overrides still apply.
	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves the configuration to the specified file path in YAML.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// yaml.Marshal directly so yaml tags are respected
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file may point at keytab material
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for structural and semantic errors.
//
// Struct tags cover field-level constraints; the cross-field invariant is
// that an enabled gateway must allow at least one mechanism.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if cfg.Auth.Enabled && !cfg.Auth.AllowSimple && !cfg.Auth.AllowKerberos {
		return ErrNoModeAllowed
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// SASLGATE_AUTH_ALLOW_SIMPLE=false, SASLGATE_LOGGING_LEVEL=DEBUG, ...
	v.SetEnvPrefix("SASLGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error); a missing file is not an error.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns the combined decode hook for custom types.
// Durations may be written as "5m"; host lists may be a comma-separated
// string (the form the env override uses) or a YAML list.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		hostListDecodeHook(),
	)
}

// hostListDecodeHook converts a comma-separated string into a []string,
// trimming whitespace and dropping empty entries. A single "*" entry means
// "allow all" and decodes to an empty list.
func hostListDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
			return data, nil
		}

		raw := strings.TrimSpace(data.(string))
		if raw == "" || raw == "*" {
			return []string{}, nil
		}

		parts := strings.Split(raw, ",")
		hosts := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				hosts = append(hosts, p)
			}
		}
		return hosts, nil
	}
}

// getConfigDir returns the default configuration directory,
// $XDG_CONFIG_HOME/saslgate or ~/.config/saslgate.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "saslgate")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "saslgate")
}

// GetDefaultConfigPath returns the default config file location.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
