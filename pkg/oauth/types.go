package oauth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ResponseTypeCode is the only response_type used by the authorization flow.
const ResponseTypeCode = "code"

// ExpirySafetyMargin is subtracted from the server-reported token lifetime so
// a token is treated as expired slightly before it really is.
const ExpirySafetyMargin = 60 * time.Second

// DefaultExpiresIn is assumed when a token response carries no expires_in.
const DefaultExpiresIn = 3600

// millisecondThreshold separates second-based from millisecond-based unix
// timestamps when expiry values arrive as plain numbers.
const millisecondThreshold = 1e10

// DefaultTokenStorageDir is the default directory for persisted OAuth tokens,
// relative to the user's home directory.
const DefaultTokenStorageDir = ".config/contentstack/tokens"

// Config holds the OAuth app registration used by the handler.
// It is immutable once the handler is constructed.
type Config struct {
	// AppID is the developer hub app uid.
	AppID string `yaml:"app_id" json:"app_id"`

	// ClientID is the OAuth client id of the app.
	ClientID string `yaml:"client_id" json:"client_id"`

	// RedirectURI is where the authorization server sends the user back.
	// Empty, or the literal "None", means no redirect_uri is sent.
	RedirectURI string `yaml:"redirect_uri" json:"redirect_uri"`

	// ResponseType is always "code"; other values are replaced.
	ResponseType string `yaml:"-" json:"response_type,omitempty"`

	// Scopes are joined with spaces when transmitted.
	Scopes []string `yaml:"scopes" json:"scopes,omitempty"`

	// ClientSecret selects the confidential-client flow when set.
	// When empty, PKCE is mandatory.
	ClientSecret string `yaml:"client_secret" json:"-"`
}

// UsePKCE reports whether the public-client (PKCE) flow applies.
func (c Config) UsePKCE() bool {
	return c.ClientSecret == ""
}

// Scope returns the scopes in wire form.
func (c Config) Scope() string {
	return strings.Join(c.Scopes, " ")
}

// HasRedirectURI reports whether a redirect URI should be transmitted.
func (c Config) HasRedirectURI() bool {
	return c.RedirectURI != "" && c.RedirectURI != "None"
}

// ExpiresIn is a token lifetime in seconds. The token endpoint has been seen
// to send it both as a JSON number and as a numeric string.
type ExpiresIn int64

// UnmarshalJSON accepts numbers and numeric strings.
func (e *ExpiresIn) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*e = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid expires_in %q: %w", raw, err)
	}
	*e = ExpiresIn(f)
	return nil
}

// TokenResponse is the JSON body returned by the token endpoint for both the
// authorization_code and refresh_token grants.
type TokenResponse struct {
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token,omitempty"`
	TokenType       string    `json:"token_type,omitempty"`
	ExpiresIn       ExpiresIn `json:"expires_in,omitempty"`
	OrganizationUID string    `json:"organization_uid,omitempty"`
	UserUID         string    `json:"user_uid,omitempty"`
	Scope           string    `json:"scope,omitempty"`
}

// ExpiresAt computes the absolute expiry relative to now, with the safety
// margin applied.
func (r *TokenResponse) ExpiresAt(now time.Time) time.Time {
	lifetime := int64(r.ExpiresIn)
	if lifetime <= 0 {
		lifetime = DefaultExpiresIn
	}
	return now.Add(time.Duration(lifetime)*time.Second - ExpirySafetyMargin)
}

// ToOAuth2Token converts the response to an oauth2.Token. organization_uid and
// user_uid travel as extra data.
func (r *TokenResponse) ToOAuth2Token(now time.Time) *oauth2.Token {
	tokenType := r.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	token := &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    tokenType,
		RefreshToken: r.RefreshToken,
		Expiry:       r.ExpiresAt(now),
	}
	return token.WithExtra(map[string]interface{}{
		"organization_uid": r.OrganizationUID,
		"user_uid":         r.UserUID,
	})
}

// ExpiryFromUnix converts a numeric unix timestamp of unknown unit into a
// time.Time. Values above 1e10 are milliseconds, anything else is seconds.
// Zero or negative values yield the zero time.
func ExpiryFromUnix(value float64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	if value > millisecondThreshold {
		return time.UnixMilli(int64(value))
	}
	sec := int64(value)
	nsec := int64((value - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// Authorization is one user's grant of an app inside an organization.
type Authorization struct {
	AuthorizationUID string `json:"authorization_uid"`
	User             struct {
		UID string `json:"uid"`
	} `json:"user"`
}
