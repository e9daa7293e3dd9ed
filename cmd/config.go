package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/contentstack/contentstack-management-go/internal/config"
)

// configCmd groups the configuration commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and save the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging config.yaml, the environment and the flags.

The client secret is masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := activeConfig
		if cfg.OAuth.ClientSecret != "" {
			cfg.OAuth.ClientSecret = "********"
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the effective configuration to config.yaml",
	Long: `Write the effective configuration to config.yaml in the configuration directory.

The client secret is never written; keep it in CONTENTSTACK_CLIENT_SECRET.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Save(flags.configPath, activeConfig); err != nil {
			return err
		}
		printf(cmd, "Saved configuration to %s\n", flags.configPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSaveCmd)
}
