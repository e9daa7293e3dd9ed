package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration and collects every problem. requireOAuth
// makes a missing app registration an error.
func (c Config) Validate(requireOAuth bool) error {
	errs := &ConfigurationErrorCollection{}

	if c.Endpoint != "" {
		raw := c.Endpoint
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		if u, err := url.Parse(raw); err != nil || u.Host == "" {
			errs.Add(ConfigurationError{Field: "endpoint", Message: fmt.Sprintf("%q is not a valid URL", c.Endpoint)})
		}
	}

	if requireOAuth || c.HasOAuth() {
		if c.OAuth.AppID == "" {
			errs.Add(ConfigurationError{
				Field:       "oauth.app_id",
				Message:     "app id is required",
				Suggestions: []string{"set oauth.app_id in config.yaml", "or export " + EnvPrefix + EnvAppID},
			})
		}
		if c.OAuth.ClientID == "" {
			errs.Add(ConfigurationError{
				Field:       "oauth.client_id",
				Message:     "client id is required",
				Suggestions: []string{"set oauth.client_id in config.yaml", "or export " + EnvPrefix + EnvClientID},
			})
		}
	}

	if c.OAuth.HasRedirectURI() {
		if u, err := url.Parse(c.OAuth.RedirectURI); err != nil || u.Scheme == "" || u.Host == "" {
			errs.Add(ConfigurationError{Field: "oauth.redirect_uri", Message: fmt.Sprintf("%q is not an absolute URL", c.OAuth.RedirectURI)})
		}
	}

	if c.MaxAttempts < 0 {
		errs.Add(ConfigurationError{Field: "max_attempts", Message: "must not be negative"})
	}
	if c.RateLimit < 0 {
		errs.Add(ConfigurationError{Field: "rate_limit", Message: "must not be negative"})
	}
	if c.LogLevel != "" {
		switch strings.ToLower(c.LogLevel) {
		case "debug", "info", "warn", "warning", "error":
		default:
			errs.Add(ConfigurationError{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)})
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
