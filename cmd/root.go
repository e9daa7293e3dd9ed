package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/contentstack/contentstack-management-go/internal/cli"
	"github.com/contentstack/contentstack-management-go/internal/transport"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates there is no usable session.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow or a refresh was rejected.
	ExitCodeAuthFailed = 3
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "csmgmt",
	Short: "Talk to the Contentstack Management API with OAuth",
	Long: `csmgmt logs in to the Contentstack Management API with an OAuth app
(PKCE or client secret), keeps the tokens fresh and sends authenticated
requests with retries.

Configuration is read from ~/.config/contentstack/config.yaml, CONTENTSTACK_*
environment variables (a .env file in the working directory is loaded too)
and command line flags, in increasing order of precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// SetVersion sets the version reported by the CLI and sent in the user agent.
func SetVersion(v string) {
	rootCmd.Version = v
	transport.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a code that tells scripts
// whether a login is needed.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "csmgmt version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var authRequired *cli.AuthRequiredError
	if errors.As(err, &authRequired) {
		return ExitCodeAuthRequired
	}

	var authExpired *cli.AuthExpiredError
	if errors.As(err, &authExpired) {
		return ExitCodeAuthRequired
	}

	var authFailed *cli.AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	registerGlobalFlags(rootCmd)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(newRequestCmd())
	rootCmd.AddCommand(configCmd)
}
