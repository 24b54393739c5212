package cmd

import (
	"fmt"
	"log"

	"github.com/josephlewis42/pipesh/core/config"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration and a host key to the config directory.",
	Long: `Write the default configuration and a new SSH host key to the config
directory. Files that already exist are left alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return config.Initialize(cfgPath, log.New(cmd.ErrOrStderr(), "", 0))
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration.",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration sessions would use, the built-in one if init wasn't run.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfigOrDefault()
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and the filesystem it describes.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := cfg.NewState(); err != nil {
			return fmt.Errorf("filesystem: %w", err)
		}
		if _, err := cfg.HostKeyPem(); err != nil {
			return fmt.Errorf("host key: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configCheckCmd)
	rootCmd.AddCommand(initCmd, configCmd)
}
