package cli

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/contentstack/contentstack-management-go/internal/oauth"
)

// ConnectionErrorType categorizes the type of connection error.
type ConnectionErrorType int

const (
	// ConnectionErrorUnknown indicates an unclassified connection error.
	ConnectionErrorUnknown ConnectionErrorType = iota
	// ConnectionErrorTLS indicates a TLS/certificate verification error.
	ConnectionErrorTLS
	// ConnectionErrorNetwork indicates a refused or unreachable connection.
	ConnectionErrorNetwork
	// ConnectionErrorTimeout indicates a connection timeout.
	ConnectionErrorTimeout
	// ConnectionErrorDNS indicates a DNS resolution failure.
	ConnectionErrorDNS
)

// String returns a human-readable name for the connection error type.
func (t ConnectionErrorType) String() string {
	switch t {
	case ConnectionErrorTLS:
		return "TLS certificate error"
	case ConnectionErrorNetwork:
		return "Network error"
	case ConnectionErrorTimeout:
		return "Connection timeout"
	case ConnectionErrorDNS:
		return "DNS resolution error"
	default:
		return "Connection error"
	}
}

// ConnectionError is a failure to reach the API or the developer hub.
type ConnectionError struct {
	// Endpoint is the URL that could not be reached.
	Endpoint string
	// Type categorizes the connection error.
	Type ConnectionErrorType
	// Reason is the underlying error.
	Reason error
}

// Error returns the category, the endpoint and the cause.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s reaching %s: %v", e.Type, e.Endpoint, e.Reason)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Reason
}

// ClassifyConnectionError analyzes err and returns a ConnectionError with
// the matching type. A nil err gives nil.
func ClassifyConnectionError(err error, endpoint string) *ConnectionError {
	if err == nil {
		return nil
	}

	connErr := &ConnectionError{Endpoint: endpoint, Type: ConnectionErrorUnknown, Reason: err}
	var dnsErr *net.DNSError
	switch {
	case isTLSError(err):
		connErr.Type = ConnectionErrorTLS
	case errors.As(err, &dnsErr):
		connErr.Type = ConnectionErrorDNS
	case isTimeoutError(err):
		connErr.Type = ConnectionErrorTimeout
	case isNetworkError(err.Error()):
		connErr.Type = ConnectionErrorNetwork
	}
	return connErr
}

func isTLSError(err error) bool {
	var certErr x509.CertificateInvalidError
	var hostErr x509.HostnameError
	var unknownAuthErr x509.UnknownAuthorityError
	var systemRootsErr x509.SystemRootsError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) ||
		errors.As(err, &unknownAuthErr) || errors.As(err, &systemRootsErr) {
		return true
	}

	errStr := err.Error()
	for _, keyword := range []string{"x509:", "certificate", "tls:", "TLS handshake"} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(err.Error(), "timeout")
}

func isNetworkError(errStr string) bool {
	for _, keyword := range []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
		"dial tcp",
		"connect:",
	} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// AuthRequiredError indicates there is no usable session.
type AuthRequiredError struct {
	// AppID is the app that needs a login.
	AppID string
	// Reason is the underlying error, if any.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf(`Authentication required for app %s

To authenticate, run:
  csmgmt auth login

To check current authentication status:
  csmgmt auth status`, e.AppID)
}

// Unwrap returns the underlying error.
func (e *AuthRequiredError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthRequiredError) Is(target error) bool {
	_, ok := target.(*AuthRequiredError)
	return ok
}

// AuthExpiredError indicates the access token expired and could not be
// refreshed.
type AuthExpiredError struct {
	// AppID is the app whose token expired.
	AppID string
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf(`Authentication expired for app %s

To re-authenticate, run:
  csmgmt auth login

Or try to refresh your token:
  csmgmt auth refresh`, e.AppID)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthExpiredError) Is(target error) bool {
	_, ok := target.(*AuthExpiredError)
	return ok
}

// AuthFailedError indicates the token endpoint or the API rejected the
// credentials.
type AuthFailedError struct {
	// AppID is the app the login was for.
	AppID string
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthFailedError) Error() string {
	return fmt.Sprintf(`Authentication failed for app %s: %v

To retry authentication, run:
  csmgmt auth login`, e.AppID, e.Reason)
}

// Unwrap returns the underlying error.
func (e *AuthFailedError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthFailedError) Is(target error) bool {
	_, ok := target.(*AuthFailedError)
	return ok
}

// ClassifyError turns errors from the OAuth handler and the interceptor
// into the errors above. Anything else is returned unchanged.
func ClassifyError(err error, appID, endpoint string) error {
	if err == nil {
		return nil
	}

	var required *AuthRequiredError
	var expired *AuthExpiredError
	var failed *AuthFailedError
	var connErr *ConnectionError
	if errors.As(err, &required) || errors.As(err, &expired) || errors.As(err, &failed) || errors.As(err, &connErr) {
		return err
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	if transportErr, ok := oauth.IsTransportError(err); ok {
		switch {
		case errors.Is(err, oauth.ErrAuthExhausted):
			return &AuthExpiredError{AppID: appID}
		case transportErr.StatusCode != 0:
			return &AuthFailedError{AppID: appID, Reason: err}
		default:
			return ClassifyConnectionError(err, endpoint)
		}
	}

	if errors.Is(err, oauth.ErrNoValidTokens) || errors.Is(err, oauth.ErrTokenNotAvailable) || oauth.IsArgumentError(err) {
		return &AuthRequiredError{AppID: appID, Reason: err}
	}
	return err
}
