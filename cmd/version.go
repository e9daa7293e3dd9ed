package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contentstack/contentstack-management-go/internal/transport"
)

// newVersionCmd creates the Cobra command for displaying the application version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of csmgmt",
		Long:  `Print the version of csmgmt and the user agent it sends.`,
		// The version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "csmgmt version %s\n", rootCmd.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "user agent: %s\n", transport.UserAgent(rootCmd.Version))
		},
	}
}
