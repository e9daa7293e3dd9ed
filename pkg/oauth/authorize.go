package oauth

import (
	"errors"
	"net/url"
)

// BuildAuthorizationURL constructs the browser-facing authorization URL:
//
//	{authBase}/#!/apps/{app_id}/authorize?response_type=code&client_id=...
//
// redirect_uri is only added when configured, scope only when scopes exist,
// and the code challenge only when pkce is non-nil.
func BuildAuthorizationURL(authBase string, cfg Config, pkce *PKCEChallenge) (string, error) {
	if authBase == "" {
		return "", errors.New("authorization base URL is not set")
	}

	query := url.Values{}
	query.Set("response_type", ResponseTypeCode)
	query.Set("client_id", cfg.ClientID)

	if cfg.HasRedirectURI() {
		query.Set("redirect_uri", cfg.RedirectURI)
	}

	if scope := cfg.Scope(); scope != "" {
		query.Set("scope", scope)
	}

	if pkce != nil {
		query.Set("code_challenge", pkce.CodeChallenge)
		query.Set("code_challenge_method", pkce.CodeChallengeMethod)
	}

	// The app host routes on the fragment, so the path is appended verbatim.
	return authBase + "/#!/apps/" + url.PathEscape(cfg.AppID) + "/authorize?" + query.Encode(), nil
}
