package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	internaloauth "github.com/contentstack/contentstack-management-go/internal/oauth"
	"github.com/contentstack/contentstack-management-go/internal/transport"
	"github.com/contentstack/contentstack-management-go/pkg/logging"
	"github.com/contentstack/contentstack-management-go/pkg/oauth"
)

// DefaultEndpoint is the management API of the default region.
const DefaultEndpoint = "https://api.contentstack.io/v3"

// Header names of the static request context.
const (
	HeaderAPIKey          = "api_key"
	HeaderOrganizationUID = "organization_uid"
)

// Config configures a Client.
type Config struct {
	// Endpoint is the management API base URL. A bare host gets https and /v3.
	Endpoint string

	// APIKey selects the stack. Optional.
	APIKey string

	// OrganizationUID is sent as a static header. Optional.
	OrganizationUID string

	// Headers are extra static headers.
	Headers map[string]string

	// OAuth enables the OAuth flow when set.
	OAuth *oauth.Config

	// Version is reported in the user agent.
	Version string

	// EarlyAccess lists early access features sent in x-header-ea.
	EarlyAccess []string

	// MaxAttempts bounds sends per request. Zero uses the default.
	MaxAttempts int

	// RateLimit caps requests per second. Zero disables it.
	RateLimit int
}

// Option configures optional collaborators of a Client.
type Option func(*options)

type options struct {
	persister       internaloauth.Persister
	httpClient      *http.Client
	handlerOpts     []internaloauth.HandlerOption
	interceptorOpts []transport.Option
}

// WithPersister stores OAuth tokens between runs.
func WithPersister(p internaloauth.Persister) Option {
	return func(o *options) {
		o.persister = p
	}
}

// WithHTTPClient sets the HTTP client for API requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithHandlerOptions passes options through to the OAuth handler.
func WithHandlerOptions(opts ...internaloauth.HandlerOption) Option {
	return func(o *options) {
		o.handlerOpts = append(o.handlerOpts, opts...)
	}
}

// WithInterceptorOptions passes options through to the interceptor.
func WithInterceptorOptions(opts ...transport.Option) Option {
	return func(o *options) {
		o.interceptorOpts = append(o.interceptorOpts, opts...)
	}
}

// Client is the shared client context.
type Client struct {
	reqCtx      transport.RequestContext
	store       *internaloauth.TokenStore
	handler     *internaloauth.Handler
	interceptor *transport.Interceptor
}

// New builds a client. Without cfg.OAuth the client has no credentials and
// requests fail with oauth.ErrNoValidTokens.
func New(cfg Config, opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	endpoint, err := NormalizeEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	reqCtx := transport.RequestContext{Endpoint: endpoint, Headers: make(http.Header)}
	for key, value := range cfg.Headers {
		reqCtx = reqCtx.WithHeader(key, value)
	}
	if cfg.APIKey != "" {
		reqCtx = reqCtx.WithHeader(HeaderAPIKey, cfg.APIKey)
	}
	if cfg.OrganizationUID != "" {
		reqCtx = reqCtx.WithHeader(HeaderOrganizationUID, cfg.OrganizationUID)
	}

	c := &Client{
		reqCtx: reqCtx,
		store:  internaloauth.NewTokenStore(),
	}

	// A nil *Handler must not end up as a non-nil Credentials.
	var creds transport.Credentials
	if cfg.OAuth != nil {
		handlerOpts := []internaloauth.HandlerOption{internaloauth.WithTokenStore(c.store)}
		if o.persister != nil {
			handlerOpts = append(handlerOpts, internaloauth.WithPersister(o.persister))
		}
		if cfg.Version != "" {
			handlerOpts = append(handlerOpts, internaloauth.WithTokenClient(oauth.NewClient(
				oauth.WithUserAgent(transport.UserAgent(cfg.Version)),
				oauth.WithLogger(logging.Subsystem("TokenClient")),
			)))
		}
		handlerOpts = append(handlerOpts, o.handlerOpts...)

		handler, err := internaloauth.NewHandler(internaloauth.HandlerConfig{Endpoint: endpoint, OAuth: *cfg.OAuth}, handlerOpts...)
		if err != nil {
			return nil, err
		}
		c.handler = handler
		c.store = handler.Store()
		creds = handler
	}

	interceptorOpts := []transport.Option{
		transport.WithVersion(cfg.Version),
		transport.WithMaxAttempts(cfg.MaxAttempts),
		transport.WithRateLimit(cfg.RateLimit),
		transport.WithHTTPClient(o.httpClient),
	}
	if cfg.EarlyAccess != nil {
		interceptorOpts = append(interceptorOpts, transport.WithEarlyAccess(cfg.EarlyAccess...))
	}
	interceptorOpts = append(interceptorOpts, o.interceptorOpts...)
	c.interceptor = transport.NewInterceptor(reqCtx, creds, interceptorOpts...)

	logging.Debug("Client", "Client created for %s (oauth=%t)", endpoint, c.handler != nil)
	return c, nil
}

// NormalizeEndpoint fills in https and the /v3 base path.
func NormalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return DefaultEndpoint, nil
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	if strings.Trim(u.Path, "/") == "" {
		u.Path = "/v3"
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

// Endpoint returns the API base URL.
func (c *Client) Endpoint() string {
	return c.reqCtx.Endpoint
}

// RequestContext returns the static request context.
func (c *Client) RequestContext() transport.RequestContext {
	return c.reqCtx
}

// OAuth returns the OAuth handler, or nil when OAuth is not configured.
func (c *Client) OAuth() *internaloauth.Handler {
	return c.handler
}

// Store returns the token store shared with the handler and the interceptor.
func (c *Client) Store() *internaloauth.TokenStore {
	return c.store
}

// Interceptor returns the request interceptor.
func (c *Client) Interceptor() *transport.Interceptor {
	return c.interceptor
}

// Headers returns the headers the next request would carry, with the
// Authorization header derived from the current token.
func (c *Client) Headers() http.Header {
	h := c.reqCtx.Headers.Clone()
	if h == nil {
		h = make(http.Header)
	}
	if auth := c.store.AuthorizationHeader(); auth != "" {
		h.Set(transport.HeaderAuthorization, auth)
	}
	return h
}

// GetValidAccessToken returns a usable access token, refreshing if needed.
func (c *Client) GetValidAccessToken(ctx context.Context) (string, error) {
	if c.handler == nil {
		return "", internaloauth.ErrOAuthNotConfigured
	}
	return c.handler.GetValidAccessToken(ctx)
}

// URL resolves path against the endpoint. Absolute URLs are kept.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.reqCtx.Endpoint + "/" + strings.TrimPrefix(path, "/")
}

// Do sends a request to path through the interceptor.
func (c *Client) Do(ctx context.Context, method, path string, req *transport.Request) (*http.Response, error) {
	return c.interceptor.Execute(ctx, method, c.URL(path), req)
}

// Logout revokes (optionally) and clears the OAuth tokens.
func (c *Client) Logout(ctx context.Context, revoke bool) bool {
	if c.handler == nil {
		c.store.Clear()
		return true
	}
	return c.handler.Logout(ctx, revoke)
}
