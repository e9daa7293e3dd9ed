package auth

import "time"

// Session states reported by Status.State.
const (
	StateAuthenticated = "authenticated"
	StateExpired       = "expired"
	StateNotLoggedIn   = "not_logged_in"
	StateNotConfigured = "not_configured"
)

// Status is a redacted snapshot of an OAuth session. It never carries token
// values.
type Status struct {
	// State is one of the State* constants.
	State string `json:"state"`

	AppID    string `json:"app_id,omitempty"`
	ClientID string `json:"client_id,omitempty"`

	// Flow is "pkce" or "client_secret".
	Flow string `json:"flow,omitempty"`

	TokenURL string `json:"token_url,omitempty"`

	ExpiresAt       time.Time `json:"expires_at,omitzero"`
	HasRefreshToken bool      `json:"has_refresh_token"`
	OrganizationUID string    `json:"organization_uid,omitempty"`
	UserUID         string    `json:"user_uid,omitempty"`
}

// Authenticated reports whether a token is present and not expired.
func (s Status) Authenticated() bool {
	return s.State == StateAuthenticated
}

// CanRefresh reports whether an expired session can be renewed without
// logging in again.
func (s Status) CanRefresh() bool {
	return s.HasRefreshToken && s.State != StateNotConfigured
}
