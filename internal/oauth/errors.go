package oauth

import (
	"errors"
	"fmt"
)

// Phases reported by TransportError.
const (
	PhaseTokenExchange  = "token exchange"
	PhaseTokenRefresh   = "token refresh"
	PhaseAuthentication = "authentication"
	PhaseRequest        = "request"
)

var (
	// ErrOAuthNotConfigured is returned when an operation needs an OAuth
	// context and none was configured.
	ErrOAuthNotConfigured = errors.New("oauth is not configured")

	// ErrTokenNotAvailable is returned when no access token exists after
	// the refresh step.
	ErrTokenNotAvailable = errors.New("access token not available")

	// ErrNoValidTokens is returned by the interceptor when a request cannot be
	// authenticated before it is sent.
	ErrNoValidTokens = errors.New("no valid tokens available")

	// ErrAuthExhausted is the cause of a TransportError when a 401 persists
	// after the available refresh token was used, or no refresh token exists.
	ErrAuthExhausted = errors.New("authentication failed after token refresh")
)

// ConfigurationError reports OAuth settings that make an operation impossible.
// It is never retried.
type ConfigurationError struct {
	// Field is the offending setting, e.g. "app_id" or "endpoint".
	Field string

	// Message describes the problem.
	Message string

	// Err is an underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	msg := "oauth configuration error"
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrOAuthNotConfigured) match configuration errors.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrOAuthNotConfigured
}

// ArgumentError reports a missing or invalid caller-supplied value such as an
// empty authorization code or an absent refresh token. No network call has
// been made when it is returned.
type ArgumentError struct {
	Argument string
	Message  string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Argument, e.Message)
}

// TransportError wraps a failed HTTP interaction with the phase it happened in.
type TransportError struct {
	// Phase is one of the Phase* constants.
	Phase string

	// StatusCode is the HTTP status, or 0 for network failures.
	StatusCode int

	// Err is the original cause.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Phase + " failed"
	}
	return e.Phase + " failed: " + e.Err.Error()
}

// Unwrap returns the original cause for error chain inspection.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsArgumentError reports whether err is or wraps an ArgumentError.
func IsArgumentError(err error) bool {
	var argErr *ArgumentError
	return errors.As(err, &argErr)
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// IsTransportError reports whether err is or wraps a TransportError, and
// returns it.
func IsTransportError(err error) (*TransportError, bool) {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr, true
	}
	return nil, false
}
