package config

import (
	"github.com/contentstack/contentstack-management-go/pkg/oauth"
)

// Config is the top-level configuration of the CLI.
type Config struct {
	Endpoint        string   `yaml:"endpoint,omitempty"`
	APIKey          string   `yaml:"api_key,omitempty"`
	OrganizationUID string   `yaml:"organization_uid,omitempty"`
	EarlyAccess     []string `yaml:"early_access,omitempty"`

	OAuth oauth.Config `yaml:"oauth"`

	// TokenStorageDir holds persisted tokens. Empty means ~/.config/contentstack/tokens.
	TokenStorageDir string `yaml:"token_storage_dir,omitempty"`

	// NoPersist keeps tokens in memory only.
	NoPersist bool `yaml:"no_persist,omitempty"`

	MaxAttempts int    `yaml:"max_attempts,omitempty"`
	RateLimit   int    `yaml:"rate_limit,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
}

// HasOAuth reports whether an OAuth app is configured.
func (c Config) HasOAuth() bool {
	return c.OAuth.AppID != "" || c.OAuth.ClientID != ""
}
