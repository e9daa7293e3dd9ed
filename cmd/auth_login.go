package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/contentstack/contentstack-management-go/internal/cli"
	"github.com/contentstack/contentstack-management-go/internal/login"
)

var loginNoBrowser bool

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in through the browser",
	Long: `Log in with the configured OAuth app.

A local server on the redirect URI (default http://localhost:8184) waits for
the authorization server to send the browser back, then the code is exchanged
for tokens. Apps without a client secret use PKCE.

Examples:
  csmgmt auth login
  csmgmt auth login --no-browser
  csmgmt auth login --app-id <app> --client-id <client>`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

// openBrowser is swapped out in tests.
var openBrowser = login.OpenBrowser

func init() {
	authLoginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "Print the authorization URL instead of opening a browser")
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	c, err := oauthClient()
	if err != nil {
		return err
	}

	var progress *cli.Progress
	flow := &login.Flow{
		Authorizer:  c.OAuth(),
		OpenBrowser: openBrowser,
		NoBrowser:   loginNoBrowser,
		Out:         cmd.ErrOrStderr(),
		OnWaiting: func() {
			progress = cli.StartProgress(cmd.ErrOrStderr(), "Waiting for authorization in the browser...", flags.quiet)
		},
	}

	if _, err := flow.Run(cmd.Context()); err != nil {
		progress.Fail("Login failed")
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &cli.AuthFailedError{AppID: activeConfig.OAuth.AppID, Reason: err}
	}
	progress.Success("Logged in")

	status := c.OAuth().Status()
	printf(cmd, "Logged in to app %s", status.AppID)
	if status.OrganizationUID != "" {
		printf(cmd, " (organization %s)", status.OrganizationUID)
	}
	printf(cmd, "\n")
	return nil
}
