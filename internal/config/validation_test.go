package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := GetDefaultConfig()
	valid.OAuth.AppID = "app-1"
	valid.OAuth.ClientID = "client-1"

	tests := []struct {
		name         string
		mutate       func(*Config)
		requireOAuth bool
		fields       []string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no oauth and not required", mutate: func(c *Config) { c.OAuth.AppID, c.OAuth.ClientID = "", "" }},
		{
			name:         "oauth required",
			mutate:       func(c *Config) { c.OAuth.AppID, c.OAuth.ClientID = "", "" },
			requireOAuth: true,
			fields:       []string{"oauth.app_id", "oauth.client_id"},
		},
		{name: "partial oauth", mutate: func(c *Config) { c.OAuth.ClientID = "" }, fields: []string{"oauth.client_id"}},
		{name: "bad redirect", mutate: func(c *Config) { c.OAuth.RedirectURI = "localhost" }, fields: []string{"oauth.redirect_uri"}},
		{name: "None redirect is allowed", mutate: func(c *Config) { c.OAuth.RedirectURI = "None" }},
		{name: "bad endpoint", mutate: func(c *Config) { c.Endpoint = "https://" }, fields: []string{"endpoint"}},
		{
			name:   "negative numbers and level",
			mutate: func(c *Config) { c.MaxAttempts, c.RateLimit, c.LogLevel = -1, -1, "loud" },
			fields: []string{"max_attempts", "rate_limit", "log_level"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			cfg.OAuth.Scopes = append([]string(nil), valid.OAuth.Scopes...)
			tt.mutate(&cfg)

			err := cfg.Validate(tt.requireOAuth)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var errs *ConfigurationErrorCollection
			require.ErrorAs(t, err, &errs)
			var got []string
			for _, e := range errs.Errors {
				got = append(got, e.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestConfigurationErrorCollection(t *testing.T) {
	errs := &ConfigurationErrorCollection{}
	assert.False(t, errs.HasErrors())
	assert.Equal(t, "no configuration errors", errs.Error())

	errs.Add(ConfigurationError{Field: "oauth.app_id", Message: "app id is required", Suggestions: []string{"set it"}})
	assert.Equal(t, "oauth.app_id: app id is required", errs.Error())

	errs.Add(ConfigurationError{Field: "CONTENTSTACK_RATE_LIMIT", Source: SourceEnv, Message: "bad"})
	assert.Equal(t, 2, errs.Count())
	assert.Equal(t, "2 configuration errors: oauth.app_id: app id is required (and 1 more)", errs.Error())

	report := errs.GetDetailedReport()
	assert.Contains(t, report, "  - set it")
	assert.Contains(t, report, "[env] CONTENTSTACK_RATE_LIMIT: bad")
}
