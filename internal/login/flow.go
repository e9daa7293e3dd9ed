package login

import (
	"context"
	"fmt"
	"io"

	"github.com/contentstack/contentstack-management-go/pkg/logging"
	"github.com/contentstack/contentstack-management-go/pkg/oauth"
)

// Authorizer is the part of the OAuth handler the login flow drives.
type Authorizer interface {
	Config() oauth.Config
	Authorize() (string, error)
	HandleRedirect(ctx context.Context, redirectURL string) (*oauth.TokenResponse, error)
}

// Flow is one interactive login.
type Flow struct {
	// Authorizer builds the authorization URL and exchanges the code.
	Authorizer Authorizer

	// OpenBrowser opens the authorization URL. Nil means OpenBrowser.
	OpenBrowser func(url string) error

	// NoBrowser only prints the URL.
	NoBrowser bool

	// Out receives the instructions for the user. Nil discards them.
	Out io.Writer

	// OnWaiting is called once the browser step is done, e.g. to start a spinner.
	OnWaiting func()
}

// Run performs the login and returns the token response.
func (f *Flow) Run(ctx context.Context) (*oauth.TokenResponse, error) {
	out := f.Out
	if out == nil {
		out = io.Discard
	}

	cfg := f.Authorizer.Config()
	if !cfg.HasRedirectURI() {
		return nil, fmt.Errorf("a redirect URI is required for interactive login")
	}

	server, err := NewCallbackServer(cfg.RedirectURI)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, CallbackTimeout)
	defer cancel()

	if err := server.Start(ctx); err != nil {
		return nil, err
	}
	defer server.Stop()

	authURL, err := f.Authorizer.Authorize()
	if err != nil {
		return nil, err
	}

	openBrowser := f.OpenBrowser
	if openBrowser == nil {
		openBrowser = OpenBrowser
	}

	if f.NoBrowser {
		fmt.Fprintf(out, "Open this URL in your browser to authorize:\n\n  %s\n\n", authURL)
	} else if err := openBrowser(authURL); err != nil {
		logging.Warn("Login", "Could not open browser: %v", err)
		fmt.Fprintf(out, "Could not open a browser. Open this URL to authorize:\n\n  %s\n\n", authURL)
	} else {
		fmt.Fprintf(out, "Opened your browser to authorize. If it did not open, visit:\n\n  %s\n\n", authURL)
	}

	if f.OnWaiting != nil {
		f.OnWaiting()
	}

	redirectURL, err := server.WaitForCallback(ctx)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("timed out after %s waiting for authorization", CallbackTimeout)
		}
		return nil, fmt.Errorf("waiting for authorization: %w", err)
	}
	logging.Debug("Login", "Redirect received on %s", trimQuery(redirectURL))

	return f.Authorizer.HandleRedirect(ctx, redirectURL)
}
