// Package auth describes the OAuth session state of a management client in
// a form suitable for display and JSON output.
package auth
