package oauth

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authorizeQuery splits the fragment-routed authorization URL into its
// prefix and parsed query.
func authorizeQuery(t *testing.T, authURL string) (string, url.Values) {
	t.Helper()
	prefix, rawQuery, found := strings.Cut(authURL, "?")
	require.True(t, found, "authorization URL has no query: %s", authURL)
	query, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)
	return prefix, query
}

func TestBuildAuthorizationURL(t *testing.T) {
	base := "https://app.example.com"

	t.Run("public client includes PKCE", func(t *testing.T) {
		pkce := GeneratePKCE()
		cfg := Config{AppID: "app-1", ClientID: "client-1", RedirectURI: "http://localhost:8184"}

		authURL, err := BuildAuthorizationURL(base, cfg, pkce)
		require.NoError(t, err)

		prefix, query := authorizeQuery(t, authURL)
		assert.Equal(t, "https://app.example.com/#!/apps/app-1/authorize", prefix)
		assert.Equal(t, "code", query.Get("response_type"))
		assert.Equal(t, "client-1", query.Get("client_id"))
		assert.Equal(t, "http://localhost:8184", query.Get("redirect_uri"))
		assert.Equal(t, pkce.CodeChallenge, query.Get("code_challenge"))
		assert.Equal(t, "S256", query.Get("code_challenge_method"))
	})

	t.Run("confidential client omits PKCE", func(t *testing.T) {
		cfg := Config{AppID: "app-1", ClientID: "client-1", ClientSecret: "secret"}

		authURL, err := BuildAuthorizationURL(base, cfg, nil)
		require.NoError(t, err)

		_, query := authorizeQuery(t, authURL)
		assert.False(t, query.Has("code_challenge"))
		assert.False(t, query.Has("code_challenge_method"))
		assert.NotContains(t, authURL, "secret")
	})

	t.Run("redirect URI omitted when empty or None", func(t *testing.T) {
		for _, redirect := range []string{"", "None"} {
			cfg := Config{AppID: "app-1", ClientID: "client-1", RedirectURI: redirect}

			authURL, err := BuildAuthorizationURL(base, cfg, nil)
			require.NoError(t, err)
			assert.NotContains(t, authURL, "redirect_uri", "redirect %q", redirect)
		}
	})

	t.Run("scopes are space joined", func(t *testing.T) {
		cfg := Config{AppID: "app-1", ClientID: "client-1", Scopes: []string{"cm.stacks.management:read", "user:read"}}

		authURL, err := BuildAuthorizationURL(base, cfg, nil)
		require.NoError(t, err)

		_, query := authorizeQuery(t, authURL)
		assert.Equal(t, "cm.stacks.management:read user:read", query.Get("scope"))
	})

	t.Run("missing base URL", func(t *testing.T) {
		_, err := BuildAuthorizationURL("", Config{AppID: "app-1", ClientID: "client-1"}, nil)
		assert.Error(t, err)
	})
}

func TestConfig_UsePKCE(t *testing.T) {
	assert.True(t, Config{ClientID: "c"}.UsePKCE())
	assert.False(t, Config{ClientID: "c", ClientSecret: "s"}.UsePKCE())
}
