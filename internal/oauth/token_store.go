package oauth

import (
	"log/slog"
	"sync"
	"time"

	pkgoauth "github.com/contentstack/contentstack-management-go/pkg/oauth"
)

// TokenState is a point-in-time copy of the OAuth credentials.
type TokenState struct {
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token,omitempty"`
	ExpiresAt       time.Time `json:"expires_at,omitzero"`
	OrganizationUID string    `json:"organization_uid,omitempty"`
	UserUID         string    `json:"user_uid,omitempty"`
}

// IsZero reports whether no credential field is set.
func (s TokenState) IsZero() bool {
	return s == TokenState{}
}

// LogValue implements slog.LogValuer. Token values are reduced to presence flags.
func (s TokenState) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_access_token", s.AccessToken != ""),
		slog.Bool("has_refresh_token", s.RefreshToken != ""),
		slog.Time("expires_at", s.ExpiresAt),
		slog.String("organization_uid", s.OrganizationUID),
		slog.String("user_uid", s.UserUID),
	)
}

// TokenStore is the single owner of mutable token state. The handler, the
// request interceptor and the client share one *TokenStore instead of
// keeping copies.
//
// Expiry is held as a time.Time; numeric timestamps are converted by
// SetExpiresAtUnix on the way in.
type TokenStore struct {
	mu    sync.RWMutex
	state TokenState
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Snapshot returns a copy of the current state.
func (s *TokenStore) Snapshot() TokenState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// AccessToken returns the current access token, or "".
func (s *TokenStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// RefreshToken returns the current refresh token, or "".
func (s *TokenStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

// OrganizationUID returns the organization the token was issued for.
func (s *TokenStore) OrganizationUID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.OrganizationUID
}

// UserUID returns the user the token was issued for.
func (s *TokenStore) UserUID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.UserUID
}

// ExpiresAt returns the recorded expiry, or the zero time.
func (s *TokenStore) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ExpiresAt
}

// SetAccessToken overwrites the access token.
func (s *TokenStore) SetAccessToken(token string) {
	s.mu.Lock()
	s.state.AccessToken = token
	s.mu.Unlock()
}

// SetRefreshToken overwrites the refresh token.
func (s *TokenStore) SetRefreshToken(token string) {
	s.mu.Lock()
	s.state.RefreshToken = token
	s.mu.Unlock()
}

// SetOrganizationUID overwrites the organization uid.
func (s *TokenStore) SetOrganizationUID(uid string) {
	s.mu.Lock()
	s.state.OrganizationUID = uid
	s.mu.Unlock()
}

// SetUserUID overwrites the user uid.
func (s *TokenStore) SetUserUID(uid string) {
	s.mu.Lock()
	s.state.UserUID = uid
	s.mu.Unlock()
}

// SetExpiresAt overwrites the expiry.
func (s *TokenStore) SetExpiresAt(t time.Time) {
	s.mu.Lock()
	s.state.ExpiresAt = t
	s.mu.Unlock()
}

// SetExpiresAtUnix overwrites the expiry from a numeric unix timestamp in
// either seconds or milliseconds (see pkgoauth.ExpiryFromUnix).
func (s *TokenStore) SetExpiresAtUnix(value float64) {
	s.SetExpiresAt(pkgoauth.ExpiryFromUnix(value))
}

// Replace swaps in a complete state, e.g. one loaded from disk.
func (s *TokenStore) Replace(state TokenState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Apply records a token endpoint response. Exchange and refresh responses go
// through here alike. A response without a refresh token, organization or
// user keeps the previous value.
func (s *TokenStore) Apply(resp *pkgoauth.TokenResponse, now time.Time) TokenState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		s.state.RefreshToken = resp.RefreshToken
	}
	if resp.OrganizationUID != "" {
		s.state.OrganizationUID = resp.OrganizationUID
	}
	if resp.UserUID != "" {
		s.state.UserUID = resp.UserUID
	}
	s.state.ExpiresAt = resp.ExpiresAt(now)

	return s.state
}

// Clear drops every credential field.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	s.state = TokenState{}
	s.mu.Unlock()
}

// IsExpired reports whether the access token must be refreshed at now.
// A store without a recorded expiry counts as expired.
func (s *TokenStore) IsExpired(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(s.state.ExpiresAt)
}

// AuthorizationHeader returns "Bearer <token>", or "" without a token.
func (s *TokenStore) AuthorizationHeader() string {
	token := s.AccessToken()
	if token == "" {
		return ""
	}
	return "Bearer " + token
}
