package commands

import (
	"fmt"

	"github.com/marmos91/saslgate/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample saslgate configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/saslgate/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  saslgate init

  # Initialize with custom path
  saslgate init --config /etc/saslgate/config.yaml

  # Force overwrite existing config
  saslgate init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error
	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file: set auth.enabled and the kerberos keytab")
	fmt.Printf("  2. Check the policy with: saslgate validate --config %s\n", configPath)
	return nil
}
