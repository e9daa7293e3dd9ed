package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/contentstack/contentstack-management-go/internal/cli"
	"github.com/contentstack/contentstack-management-go/pkg/auth"
)

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the OAuth session",
	Long: `Show the OAuth session of the configured app without contacting the server.

Token values are never printed.

Examples:
  csmgmt auth status
  csmgmt auth status -o json`,
	Args: cobra.NoArgs,
	RunE: runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	status := auth.Status{State: auth.StateNotConfigured}
	if activeConfig.HasOAuth() {
		c, err := oauthClient()
		if err != nil {
			return err
		}
		status = c.OAuth().Status()
	}
	return cli.WriteStatus(cmd.OutOrStdout(), status, outputFormat(), time.Now())
}
