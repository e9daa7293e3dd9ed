// Package oauth keeps the OAuth credentials of a management client usable.
//
// A Handler runs the authorization code flow (with PKCE for public clients,
// with a client secret for confidential ones), records the resulting tokens
// in a TokenStore and refreshes them when they expire. The TokenStore is the
// only place token state lives; the request interceptor and the client read
// it through a shared pointer.
//
// Tokens can optionally be persisted with a Persister such as FileStore.
package oauth
