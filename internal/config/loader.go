package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/contentstack/contentstack-management-go/pkg/logging"
)

const (
	userConfigDir  = ".config/contentstack"
	configFileName = "config.yaml"

	// EnvPrefix prefixes every environment variable the loader reads.
	EnvPrefix = "CONTENTSTACK_"
)

// Environment variables, without EnvPrefix.
const (
	EnvEndpoint        = "ENDPOINT"
	EnvAPIKey          = "API_KEY"
	EnvOrganizationUID = "ORGANIZATION_UID"
	EnvEarlyAccess     = "EARLY_ACCESS"
	EnvAppID           = "APP_ID"
	EnvClientID        = "CLIENT_ID"
	EnvClientSecret    = "CLIENT_SECRET"
	EnvRedirectURI     = "REDIRECT_URI"
	EnvScopes          = "SCOPES"
	EnvTokenDir        = "TOKEN_DIR"
	EnvMaxAttempts     = "MAX_ATTEMPTS"
	EnvRateLimit       = "RATE_LIMIT"
	EnvLogLevel        = "LOG_LEVEL"
)

// GetDefaultConfigPath returns ~/.config/contentstack.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		logging.Debug("ConfigLoader", "Loaded environment from %s", path)
	}
	return nil
}

// LoadConfig builds the configuration from the defaults, config.yaml in
// configPath and the environment. It does not validate the result.
func LoadConfig(configPath string) (Config, error) {
	config := GetDefaultConfig()

	if configPath != "" {
		configFilePath := filepath.Join(configPath, configFileName)
		data, err := os.ReadFile(configFilePath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
		case err != nil:
			return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
		default:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
			}
			logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
		}
	}

	if err := ApplyEnv(&config, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return config, nil
}

// ApplyEnv overrides config with CONTENTSTACK_* variables found by lookup.
func ApplyEnv(config *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		value, ok := lookup(EnvPrefix + name)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(value), true
	}

	stringFields := map[string]*string{
		EnvEndpoint:        &config.Endpoint,
		EnvAPIKey:          &config.APIKey,
		EnvOrganizationUID: &config.OrganizationUID,
		EnvAppID:           &config.OAuth.AppID,
		EnvClientID:        &config.OAuth.ClientID,
		EnvClientSecret:    &config.OAuth.ClientSecret,
		EnvRedirectURI:     &config.OAuth.RedirectURI,
		EnvTokenDir:        &config.TokenStorageDir,
		EnvLogLevel:        &config.LogLevel,
	}
	for name, target := range stringFields {
		if value, ok := get(name); ok {
			*target = value
		}
	}

	if value, ok := get(EnvScopes); ok {
		config.OAuth.Scopes = splitList(value)
	}
	if value, ok := get(EnvEarlyAccess); ok {
		config.EarlyAccess = splitList(value)
	}

	intFields := map[string]*int{
		EnvMaxAttempts: &config.MaxAttempts,
		EnvRateLimit:   &config.RateLimit,
	}
	for name, target := range intFields {
		value, ok := get(name)
		if !ok || value == "" {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return ConfigurationError{Field: EnvPrefix + name, Source: SourceEnv, Message: fmt.Sprintf("%q is not a number", value)}
		}
		*target = n
	}
	return nil
}

// splitList splits on commas and whitespace, dropping empty items.
func splitList(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// Save writes config to config.yaml in configPath, creating the directory.
// The client secret is never written.
func Save(configPath string, config Config) error {
	if err := os.MkdirAll(configPath, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	config.OAuth.ClientSecret = ""

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(configPath, configFileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logging.Info("ConfigLoader", "Saved configuration to %s", path)
	return nil
}
