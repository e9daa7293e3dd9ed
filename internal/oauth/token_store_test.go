package oauth

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	pkgoauth "github.com/contentstack/contentstack-management-go/pkg/oauth"
)

func TestTokenStore_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expiry  time.Time
		expired bool
	}{
		{name: "no expiry", expired: true},
		{name: "future", expiry: now.Add(time.Hour), expired: false},
		{name: "past", expiry: now.Add(-time.Hour), expired: true},
		{name: "exactly now", expiry: now, expired: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewTokenStore()
			store.SetExpiresAt(tt.expiry)
			assert.Equal(t, tt.expired, store.IsExpired(now))
		})
	}
}

func TestTokenStore_SetExpiresAtUnix(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)

	store := NewTokenStore()
	store.SetExpiresAtUnix(float64(expiry.Unix()))
	assert.True(t, store.ExpiresAt().Equal(expiry), "seconds")

	store.SetExpiresAtUnix(float64(expiry.UnixMilli()))
	assert.True(t, store.ExpiresAt().Equal(expiry), "milliseconds")

	store.SetExpiresAtUnix(0)
	assert.True(t, store.ExpiresAt().IsZero())
}

func TestTokenStore_Apply(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewTokenStore()

	state := store.Apply(&pkgoauth.TokenResponse{
		AccessToken:     "access-1",
		RefreshToken:    "refresh-1",
		ExpiresIn:       3600,
		OrganizationUID: "org-1",
		UserUID:         "user-1",
	}, now)

	assert.Equal(t, TokenState{
		AccessToken:     "access-1",
		RefreshToken:    "refresh-1",
		ExpiresAt:       now.Add(59 * time.Minute),
		OrganizationUID: "org-1",
		UserUID:         "user-1",
	}, state)

	state = store.Apply(&pkgoauth.TokenResponse{AccessToken: "access-2", ExpiresIn: 120}, now)
	assert.Equal(t, "access-2", state.AccessToken)
	assert.Equal(t, "refresh-1", state.RefreshToken)
	assert.Equal(t, "org-1", state.OrganizationUID)
	assert.Equal(t, "user-1", state.UserUID)
	assert.Equal(t, now.Add(time.Minute), state.ExpiresAt)
	assert.Equal(t, state, store.Snapshot())
}

func TestTokenStore_ClearAndHeader(t *testing.T) {
	store := NewTokenStore()
	assert.Empty(t, store.AuthorizationHeader())

	store.SetAccessToken("abc")
	store.SetRefreshToken("def")
	assert.Equal(t, "Bearer abc", store.AuthorizationHeader())
	assert.False(t, store.Snapshot().IsZero())

	store.Clear()
	assert.Empty(t, store.AuthorizationHeader())
	assert.True(t, store.Snapshot().IsZero())
}

func TestTokenState_LogValueRedacts(t *testing.T) {
	state := TokenState{AccessToken: "secret-access", RefreshToken: "secret-refresh", UserUID: "user-1"}

	value := state.LogValue()
	assert.Equal(t, slog.KindGroup, value.Kind())
	assert.NotContains(t, value.String(), "secret-access")
	assert.NotContains(t, value.String(), "secret-refresh")
	assert.Contains(t, value.String(), "user-1")
}
