package config

const (
	// DefaultEndpoint is the management API of the default region.
	DefaultEndpoint = "https://api.contentstack.io/v3"

	// DefaultRedirectURI matches the local callback server of the login flow.
	DefaultRedirectURI = "http://localhost:8184"

	// DefaultLogLevel is used when nothing else is configured.
	DefaultLogLevel = "info"
)

// DefaultScopes are requested when the configuration names none.
var DefaultScopes = []string{
	"cm.stacks.management:read",
	"cm.stacks.management:write",
	"user.profile:read",
	"user:read",
}

// GetDefaultConfig returns the built-in defaults.
func GetDefaultConfig() Config {
	cfg := Config{
		Endpoint: DefaultEndpoint,
		LogLevel: DefaultLogLevel,
	}
	cfg.OAuth.RedirectURI = DefaultRedirectURI
	cfg.OAuth.Scopes = append([]string(nil), DefaultScopes...)
	return cfg
}
