package oauth

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoints are the OAuth URLs derived from the management API endpoint.
type Endpoints struct {
	// AuthorizationBaseURL is the browser-facing app host, e.g. https://app.contentstack.com.
	AuthorizationBaseURL string

	// DeveloperHubBaseURL is the developer hub API host, e.g. https://developerhub-api.contentstack.com.
	DeveloperHubBaseURL string
}

// TokenURL is the token endpoint on the developer hub.
func (e Endpoints) TokenURL() string {
	if e.DeveloperHubBaseURL == "" {
		return ""
	}
	return e.DeveloperHubBaseURL + "/token"
}

// AuthorizationsURL lists the authorizations of an app.
func (e Endpoints) AuthorizationsURL(appID string) string {
	return e.DeveloperHubBaseURL + "/manifests/" + url.PathEscape(appID) + "/authorizations"
}

// DeriveEndpoints computes the OAuth hosts from the API endpoint by
// substituting the "api" part of the host name:
//
//	https://api.contentstack.io/v3    -> https://app.contentstack.io, https://developerhub-api.contentstack.io
//	https://eu-api.contentstack.com   -> https://eu-app.contentstack.com, https://eu-developerhub-api.contentstack.com
//
// A bare host without scheme is treated as https.
func DeriveEndpoints(apiEndpoint string) (Endpoints, error) {
	raw := strings.TrimSpace(apiEndpoint)
	if raw == "" {
		return Endpoints{}, fmt.Errorf("api endpoint is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Endpoints{}, fmt.Errorf("invalid api endpoint %q: %w", apiEndpoint, err)
	}
	if u.Host == "" {
		return Endpoints{}, fmt.Errorf("invalid api endpoint %q: missing host", apiEndpoint)
	}
	if !strings.Contains(u.Host, "api") {
		return Endpoints{}, fmt.Errorf("cannot derive OAuth hosts from %q: host has no api label", apiEndpoint)
	}

	base := func(host string) string {
		return u.Scheme + "://" + host
	}

	return Endpoints{
		AuthorizationBaseURL: base(strings.Replace(u.Host, "api", "app", 1)),
		DeveloperHubBaseURL:  base(strings.Replace(u.Host, "api", "developerhub-api", 1)),
	}, nil
}
