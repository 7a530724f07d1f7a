package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/marmos91/saslgate/internal/cli/output"
	"github.com/marmos91/saslgate/pkg/auth"
	"github.com/marmos91/saslgate/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and print the effective auth policy",
	Long: `Load the configuration, run validation, and print the effective
dual-mode policy: which mechanisms are enabled, which hosts may still use
simple auth, and the Kerberos material the GSSAPI path would use.

Examples:
  saslgate validate
  saslgate validate --config /etc/saslgate/config.yaml`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	fmt.Println("Configuration is valid.")
	fmt.Println()

	hosts := "all hosts"
	if len(cfg.Auth.SimpleAllowedHosts) > 0 {
		hosts = strings.Join(cfg.Auth.SimpleAllowedHosts, ", ")
	}

	output.SimpleTable(os.Stdout, [][2]string{
		{"Enabled", strconv.FormatBool(cfg.Auth.Enabled)},
		{"Allow Kerberos", strconv.FormatBool(cfg.Auth.AllowKerberos)},
		{"Allow simple", strconv.FormatBool(cfg.Auth.AllowSimple)},
		{"Simple allowed hosts", hosts},
		{"Simple default user", cfg.Auth.SimpleDefaultUser},
		{"Simple user mapping", strconv.FormatBool(cfg.Auth.SimpleUserMapping)},
		{"Metrics", strconv.FormatBool(cfg.Auth.MetricsEnabled)},
	})

	if cfg.Auth.AllowKerberos {
		fmt.Println()
		output.SimpleTable(os.Stdout, [][2]string{
			{"Keytab", valueOr(cfg.Kerberos.KeytabPath, "(not set)")},
			{"Service principal", valueOr(cfg.Kerberos.ServicePrincipal, "(not set)")},
			{"krb5.conf", cfg.Kerberos.Krb5Conf},
			{"Max clock skew", cfg.Kerberos.MaxClockSkew.String()},
		})
	}

	fmt.Println()
	mechRows := make([][]string, 0, len(auth.SupportedMechanisms()))
	for _, m := range auth.SupportedMechanisms() {
		mode := auth.ModeFromMechanism(m)
		allowed := cfg.Auth.AllowSimple
		if mode.RequiresKerberos() {
			allowed = cfg.Auth.AllowKerberos
		}
		if m == "DUAL-MODE" {
			allowed = cfg.Auth.AllowSimple || cfg.Auth.AllowKerberos
		}
		mechRows = append(mechRows, []string{m, mode.String(), strconv.FormatBool(allowed)})
	}
	output.PrintTable(os.Stdout, []string{"Mechanism", "Mode", "Accepted"}, mechRows)

	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
