// Package login runs the interactive OAuth login: it starts a local server
// on the redirect URI, opens the authorization URL in the browser, waits for
// the redirect and hands the captured URL to the OAuth handler.
package login
