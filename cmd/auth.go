package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/contentstack/contentstack-management-go/internal/cli"
	"github.com/contentstack/contentstack-management-go/internal/client"
	internaloauth "github.com/contentstack/contentstack-management-go/internal/oauth"
)

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the OAuth session",
	Long: `Manage the OAuth session of the configured Contentstack app.

Examples:
  csmgmt auth login                     # Log in through the browser
  csmgmt auth status                    # Show the session
  csmgmt auth refresh                   # Force a token refresh
  csmgmt auth logout                    # Revoke the authorization and clear tokens
  csmgmt auth url                       # Print the authorization URL only
  csmgmt auth exchange --redirect-url <url> --code-verifier <v>
                                        # Finish a login started with 'auth url'
  csmgmt auth authorizations            # List the app's authorizations`,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear stored tokens",
	Long: `Clear the stored OAuth tokens.

By default the authorization of the current user is revoked on the developer
hub first. A failed revocation is reported in the log and the local tokens
are cleared anyway.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogout,
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force token refresh",
	Args:  cobra.NoArgs,
	RunE:  runAuthRefresh,
}

var authURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the authorization URL",
	Long: `Print the authorization URL without starting the local callback server.

Open the URL, approve the app and pass the URL you were redirected to to
'csmgmt auth exchange'. For PKCE apps the printed code verifier must be
passed along with --code-verifier.`,
	Args: cobra.NoArgs,
	RunE: runAuthURL,
}

var authExchangeCmd = &cobra.Command{
	Use:   "exchange",
	Short: "Exchange an authorization code for tokens",
	Args:  cobra.NoArgs,
	RunE:  runAuthExchange,
}

var authAuthorizationsCmd = &cobra.Command{
	Use:   "authorizations",
	Short: "List the authorizations of the app",
	Args:  cobra.NoArgs,
	RunE:  runAuthAuthorizations,
}

var (
	logoutRevoke bool

	exchangeCode         string
	exchangeRedirectURL  string
	exchangeCodeVerifier string
)

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRefreshCmd)
	authCmd.AddCommand(authURLCmd)
	authCmd.AddCommand(authExchangeCmd)
	authCmd.AddCommand(authAuthorizationsCmd)

	authLogoutCmd.Flags().BoolVar(&logoutRevoke, "revoke", true, "Revoke the app authorization before clearing tokens")

	authExchangeCmd.Flags().StringVar(&exchangeCode, "code", "", "Authorization code")
	authExchangeCmd.Flags().StringVar(&exchangeRedirectURL, "redirect-url", "", "Full URL the browser was redirected to")
	authExchangeCmd.Flags().StringVar(&exchangeCodeVerifier, "code-verifier", "", "PKCE code verifier printed by 'auth url'")
	authExchangeCmd.MarkFlagsMutuallyExclusive("code", "redirect-url")
	authExchangeCmd.MarkFlagsOneRequired("code", "redirect-url")
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	c, err := oauthClient()
	if err != nil {
		return err
	}

	c.Logout(cmd.Context(), logoutRevoke)
	printf(cmd, "Logged out of app %s\n", activeConfig.OAuth.AppID)
	return nil
}

func runAuthRefresh(cmd *cobra.Command, _ []string) error {
	c, err := oauthClient()
	if err != nil {
		return err
	}

	progress := cli.StartProgress(cmd.ErrOrStderr(), "Refreshing token...", flags.quiet)
	if _, err := c.OAuth().RefreshAccessToken(cmd.Context()); err != nil {
		progress.Fail("Token refresh failed")
		return classify(c, err)
	}
	progress.Success("Token refreshed")

	printf(cmd, "Token valid until %s\n", c.OAuth().TokenExpiryTime().Local().Format(time.RFC3339))
	return nil
}

func runAuthURL(cmd *cobra.Command, _ []string) error {
	c, err := oauthClient()
	if err != nil {
		return err
	}
	handler := c.OAuth()

	authURL, err := handler.Authorize()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, authURL)
	if handler.UsePKCE() {
		fmt.Fprintf(out, "Code verifier: %s\n", handler.CodeVerifier())
		printf(cmd, "\nAfter approving, run:\n  csmgmt auth exchange --code-verifier %s --redirect-url '<redirected URL>'\n", handler.CodeVerifier())
	}
	return nil
}

func runAuthExchange(cmd *cobra.Command, _ []string) error {
	if activeConfig.OAuth.UsePKCE() && exchangeCodeVerifier == "" {
		return errors.New("--code-verifier is required for apps without a client secret")
	}

	c, err := oauthClient(client.WithHandlerOptions(internaloauth.WithCodeVerifier(exchangeCodeVerifier)))
	if err != nil {
		return err
	}
	handler := c.OAuth()

	if exchangeRedirectURL != "" {
		_, err = handler.HandleRedirect(cmd.Context(), exchangeRedirectURL)
	} else {
		_, err = handler.ExchangeCodeForToken(cmd.Context(), exchangeCode)
	}
	if err != nil {
		return &cli.AuthFailedError{AppID: activeConfig.OAuth.AppID, Reason: err}
	}

	printf(cmd, "Logged in to app %s\n", activeConfig.OAuth.AppID)
	return nil
}

func runAuthAuthorizations(cmd *cobra.Command, _ []string) error {
	c, err := oauthClient()
	if err != nil {
		return err
	}

	auths, err := c.OAuth().Authorizations(cmd.Context())
	if err != nil {
		return classify(c, err)
	}
	return cli.WriteAuthorizations(cmd.OutOrStdout(), auths, outputFormat())
}
