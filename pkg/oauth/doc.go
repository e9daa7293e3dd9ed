// Package oauth provides the OAuth 2.0 protocol primitives used by the
// Contentstack management SDK.
//
// This package is stateless. Token state, refresh serialization and
// persistence live in internal/oauth; this package only knows how to talk
// the protocol.
//
// # Core Components
//
//   - Config: the app registration (app id, client id, redirect URI, scopes,
//     optional client secret selecting the confidential flow)
//   - PKCE: verifier and S256 challenge generation (RFC 7636)
//   - DeriveEndpoints: authorization and developer hub hosts computed from
//     the management API endpoint
//   - BuildAuthorizationURL: the browser-facing authorize URL
//   - Client: token endpoint grants (authorization_code, refresh_token) and
//     the developer hub authorization list/revoke calls
//
// # Usage
//
//	endpoints, err := oauth.DeriveEndpoints("https://api.contentstack.io/v3")
//	pkce := oauth.GeneratePKCE()
//	authURL, err := oauth.BuildAuthorizationURL(endpoints.AuthorizationBaseURL, cfg, pkce)
//
//	client := oauth.NewClient(oauth.WithLogger(logger))
//	token, err := client.ExchangeCode(ctx, endpoints.TokenURL(), oauth.ExchangeRequest{...})
package oauth
