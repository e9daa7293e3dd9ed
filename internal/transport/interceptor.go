package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/contentstack/contentstack-management-go/internal/oauth"
	"github.com/contentstack/contentstack-management-go/pkg/logging"
)

const subsystem = "Transport"

// Credentials is the token source the interceptor authenticates with.
// *oauth.Handler implements it.
type Credentials interface {
	// EnsureValidToken refreshes an expired access token.
	EnsureValidToken(ctx context.Context) error

	// RefreshRejectedToken refreshes after the server rejected the given
	// access token, unless it was already replaced.
	RefreshRejectedToken(ctx context.Context, rejected string) error

	AccessToken() string
	RefreshToken() string
	TokenURL() string
}

// Request holds the optional parts of a request. At most one of Body, JSON
// and Form should be set.
type Request struct {
	Query   url.Values
	Headers http.Header

	// Body is sent as is.
	Body io.Reader

	// JSON is marshaled as the request body.
	JSON interface{}

	// Form is encoded as the request body.
	Form url.Values
}

// Interceptor executes requests with token handling and retries.
type Interceptor struct {
	reqCtx RequestContext
	creds  Credentials

	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	backoffBase time.Duration
	backoffMax  time.Duration
	userAgent   string
	earlyAccess []string

	// sleep waits for d or until ctx is done.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewInterceptor creates an interceptor for reqCtx. creds may be nil, in
// which case every request outside the token endpoint fails with
// oauth.ErrNoValidTokens.
func NewInterceptor(reqCtx RequestContext, creds Credentials, opts ...Option) *Interceptor {
	i := &Interceptor{
		reqCtx:      reqCtx,
		creds:       creds,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		maxAttempts: DefaultMaxAttempts,
		backoffBase: DefaultBackoffBase,
		backoffMax:  DefaultBackoffMax,
		userAgent:   UserAgent(Version),
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// RequestContext returns the static request context.
func (i *Interceptor) RequestContext() RequestContext {
	return i.reqCtx
}

// Execute sends a request and applies the retry policy:
//
//   - 401 refreshes the access token and sends again, once a refresh token
//     exists and attempts remain; otherwise it fails with a TransportError
//     wrapping oauth.ErrAuthExhausted.
//   - 429 and 5xx other than 501 are retried after an exponential backoff;
//     when attempts run out the last response is returned without error.
//   - anything else is returned as is.
//
// The caller must close the body of the returned response.
func (i *Interceptor) Execute(ctx context.Context, method, rawURL string, req *Request) (*http.Response, error) {
	if req == nil {
		req = &Request{}
	}
	requestID := uuid.NewString()
	tokenEndpoint := i.isTokenURL(rawURL)

	if !tokenEndpoint {
		ok, err := i.ensureValidToken(ctx)
		if err != nil {
			if oauth.IsArgumentError(err) || oauth.IsConfigurationError(err) {
				return nil, fmt.Errorf("%w: %w", oauth.ErrNoValidTokens, err)
			}
			return nil, err
		}
		if !ok {
			return nil, oauth.ErrNoValidTokens
		}
	}

	target, err := withQuery(rawURL, req.Query)
	if err != nil {
		return nil, err
	}
	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		if i.limiter != nil {
			if err := i.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		accessToken := ""
		if i.creds != nil {
			accessToken = i.creds.AccessToken()
		}

		httpReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header = i.buildHeaders(tokenEndpoint, accessToken, req.Headers)

		logging.Debug(subsystem, "[%s] %s %s attempt %d/%d", requestID, method, redactURL(target), attempt, i.maxAttempts)

		resp, err := i.httpClient.Do(httpReq)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &oauth.TransportError{Phase: oauth.PhaseRequest, Err: err}
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized && !tokenEndpoint:
			drain(resp)
			if i.creds == nil || i.creds.RefreshToken() == "" || attempt >= i.maxAttempts {
				logging.Warn(subsystem, "[%s] %s %s unauthorized, no refresh possible", requestID, method, redactURL(target))
				return nil, &oauth.TransportError{Phase: oauth.PhaseAuthentication, StatusCode: resp.StatusCode, Err: oauth.ErrAuthExhausted}
			}
			logging.Debug(subsystem, "[%s] 401 received, refreshing access token", requestID)
			if err := i.creds.RefreshRejectedToken(ctx, accessToken); err != nil {
				return nil, &oauth.TransportError{Phase: oauth.PhaseAuthentication, StatusCode: resp.StatusCode, Err: err}
			}

		case isRetryable(resp.StatusCode):
			if attempt >= i.maxAttempts {
				logging.Warn(subsystem, "[%s] %s %s returned %d after %d attempts", requestID, method, redactURL(target), resp.StatusCode, attempt)
				return resp, nil
			}
			delay := i.backoff(attempt, resp)
			drain(resp)
			logging.Debug(subsystem, "[%s] %d received, retrying in %s", requestID, resp.StatusCode, delay)
			if err := i.sleep(ctx, delay); err != nil {
				return nil, err
			}

		default:
			return resp, nil
		}
	}
}

// ensureValidToken reports whether an access token is available after
// refreshing an expired one. It is false without credentials.
func (i *Interceptor) ensureValidToken(ctx context.Context) (bool, error) {
	if i.creds == nil {
		return false, nil
	}
	if err := i.creds.EnsureValidToken(ctx); err != nil {
		return false, err
	}
	return i.creds.AccessToken() != "", nil
}

func (i *Interceptor) isTokenURL(rawURL string) bool {
	if i.creds == nil {
		return false
	}
	tokenURL := i.creds.TokenURL()
	if tokenURL == "" {
		return false
	}
	return stripQuery(rawURL) == stripQuery(tokenURL)
}

// isRetryable reports whether status is worth sending again. 501 means the
// server will never support the request.
func isRetryable(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500 && status != http.StatusNotImplemented
}

// backoff returns base * 2^(attempt-1), capped. A Retry-After header in
// seconds takes precedence when it asks for less than the cap.
func (i *Interceptor) backoff(attempt int, resp *http.Response) time.Duration {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
			d := time.Duration(seconds) * time.Second
			if d <= i.backoffMax {
				return d
			}
		}
	}

	delay := i.backoffBase * time.Duration(1<<uint(attempt-1))
	if delay > i.backoffMax || delay < 0 {
		delay = i.backoffMax
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

// bufferBody reads the request body once so every attempt can resend it.
func bufferBody(req *Request) ([]byte, error) {
	switch {
	case req.Body != nil:
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		return data, nil
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		return data, nil
	case req.Form != nil:
		return []byte(req.Form.Encode()), nil
	default:
		return nil, nil
	}
}

func bodyReader(body []byte) io.Reader {
	if body == nil {
		return nil
	}
	return bytes.NewReader(body)
}

func withQuery(rawURL string, query url.Values) (string, error) {
	if len(query) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid request URL %q: %w", rawURL, err)
	}
	merged := u.Query()
	for key, values := range query {
		for _, v := range values {
			merged.Add(key, v)
		}
	}
	u.RawQuery = merged.Encode()
	return u.String(), nil
}

func stripQuery(rawURL string) string {
	if idx := strings.IndexAny(rawURL, "?#"); idx >= 0 {
		rawURL = rawURL[:idx]
	}
	return strings.TrimSuffix(rawURL, "/")
}

// redactURL drops the query string, which may carry secrets.
func redactURL(rawURL string) string {
	if idx := strings.IndexByte(rawURL, '?'); idx >= 0 {
		return rawURL[:idx] + "?..."
	}
	return rawURL
}
