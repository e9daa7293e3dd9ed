package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0600))
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, DefaultRedirectURI, cfg.OAuth.RedirectURI)
	assert.Equal(t, DefaultScopes, cfg.OAuth.Scopes)
	assert.False(t, cfg.HasOAuth())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
endpoint: https://eu-api.contentstack.com/v3
api_key: blt123
early_access: [taxonomy, branches]
max_attempts: 5
oauth:
  app_id: app-1
  client_id: client-1
  scopes: [user:read]
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://eu-api.contentstack.com/v3", cfg.Endpoint)
	assert.Equal(t, "blt123", cfg.APIKey)
	assert.Equal(t, []string{"taxonomy", "branches"}, cfg.EarlyAccess)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, "app-1", cfg.OAuth.AppID)
	assert.Equal(t, "client-1", cfg.OAuth.ClientID)
	assert.Equal(t, []string{"user:read"}, cfg.OAuth.Scopes)
	assert.Equal(t, DefaultRedirectURI, cfg.OAuth.RedirectURI, "unset keys keep defaults")
	assert.True(t, cfg.HasOAuth())
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "endpoint: [unclosed")

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "oauth:\n  app_id: from-file\n  client_id: client-1\n")
	t.Setenv(EnvPrefix+EnvAppID, "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OAuth.AppID)
	assert.Equal(t, "client-1", cfg.OAuth.ClientID)
}

func TestApplyEnv(t *testing.T) {
	cfg := GetDefaultConfig()
	err := ApplyEnv(&cfg, envMap(map[string]string{
		"CONTENTSTACK_ENDPOINT":      "https://azure-na-api.contentstack.com/v3",
		"CONTENTSTACK_CLIENT_SECRET": " secret ",
		"CONTENTSTACK_SCOPES":        "user:read, cm.stacks.management:read",
		"CONTENTSTACK_EARLY_ACCESS":  "taxonomy",
		"CONTENTSTACK_RATE_LIMIT":    "10",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://azure-na-api.contentstack.com/v3", cfg.Endpoint)
	assert.Equal(t, "secret", cfg.OAuth.ClientSecret)
	assert.Equal(t, []string{"user:read", "cm.stacks.management:read"}, cfg.OAuth.Scopes)
	assert.Equal(t, []string{"taxonomy"}, cfg.EarlyAccess)
	assert.Equal(t, 10, cfg.RateLimit)
}

func TestApplyEnv_InvalidNumber(t *testing.T) {
	cfg := GetDefaultConfig()
	err := ApplyEnv(&cfg, envMap(map[string]string{"CONTENTSTACK_MAX_ATTEMPTS": "three"}))

	var cfgErr ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, SourceEnv, cfgErr.Source)
	assert.Equal(t, "CONTENTSTACK_MAX_ATTEMPTS", cfgErr.Field)
}

func TestApplyEnv_Nothing(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, ApplyEnv(&cfg, noEnv))
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CONTENTSTACK_TEST_DOTENV=from-dotenv\n"), 0600))
	t.Setenv("CONTENTSTACK_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("CONTENTSTACK_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-dotenv", os.Getenv("CONTENTSTACK_TEST_DOTENV"))
}

func TestSave_DropsClientSecret(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := GetDefaultConfig()
	cfg.OAuth.AppID = "app-1"
	cfg.OAuth.ClientID = "client-1"
	cfg.OAuth.ClientSecret = "secret"

	require.NoError(t, Save(dir, cfg))

	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")

	loaded, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "app-1", loaded.OAuth.AppID)
	assert.Empty(t, loaded.OAuth.ClientSecret)
}
