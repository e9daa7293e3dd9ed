// Package config loads the CLI configuration.
//
// Settings come from four places, later ones winning: built-in defaults,
// config.yaml in the configuration directory (default
// ~/.config/contentstack), CONTENTSTACK_* environment variables (optionally
// seeded from a .env file) and command line flags. Flags are applied by the
// cmd package after LoadConfig returns.
//
// Example config.yaml:
//
//	endpoint: https://eu-api.contentstack.com/v3
//	api_key: blt0123456789
//	early_access: [taxonomy]
//	oauth:
//	  app_id: 6400aa06db64de001a31c8a9
//	  client_id: Ie0FEfTzlfAHL4xM
//	  redirect_uri: http://localhost:8184
//	  scopes: [cm.stacks.management:read, user:read]
package config
