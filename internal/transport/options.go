package transport

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultMaxAttempts bounds how often one Execute call sends a request.
	DefaultMaxAttempts = 3

	// DefaultBackoffBase is the delay before the first retry of a 429 or 5xx.
	DefaultBackoffBase = time.Second

	// DefaultBackoffMax caps the delay between retries.
	DefaultBackoffMax = 30 * time.Second

	// DefaultTimeout is the HTTP client timeout.
	DefaultTimeout = 30 * time.Second
)

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithHTTPClient sets the HTTP client used to send requests.
func WithHTTPClient(c *http.Client) Option {
	return func(i *Interceptor) {
		if c != nil {
			i.httpClient = c
		}
	}
}

// WithMaxAttempts sets how many times a request is sent at most.
func WithMaxAttempts(n int) Option {
	return func(i *Interceptor) {
		if n > 0 {
			i.maxAttempts = n
		}
	}
}

// WithBackoff sets the base delay and the cap of the exponential backoff.
func WithBackoff(base, max time.Duration) Option {
	return func(i *Interceptor) {
		if base >= 0 {
			i.backoffBase = base
		}
		if max >= 0 {
			i.backoffMax = max
		}
	}
}

// WithRateLimit limits outgoing requests to requestsPerSecond. Zero disables it.
func WithRateLimit(requestsPerSecond int) Option {
	return func(i *Interceptor) {
		if requestsPerSecond <= 0 {
			i.limiter = nil
			return
		}
		i.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithVersion sets the SDK version reported in the user agent headers.
func WithVersion(version string) Option {
	return func(i *Interceptor) {
		if version != "" {
			i.userAgent = UserAgent(version)
		}
	}
}

// WithEarlyAccess sets the early access features sent in x-header-ea.
func WithEarlyAccess(features ...string) Option {
	return func(i *Interceptor) {
		i.earlyAccess = append([]string(nil), features...)
	}
}
