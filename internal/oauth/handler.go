package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/contentstack/contentstack-management-go/pkg/auth"
	"github.com/contentstack/contentstack-management-go/pkg/logging"
	pkgoauth "github.com/contentstack/contentstack-management-go/pkg/oauth"
)

const subsystem = "OAuth"

// HandlerConfig configures an OAuth handler.
type HandlerConfig struct {
	// Endpoint is the management API endpoint, e.g. https://api.contentstack.io/v3.
	// The authorization and token hosts are derived from it once.
	Endpoint string

	// OAuth is the app registration.
	OAuth pkgoauth.Config
}

// HandlerOption configures optional handler collaborators.
type HandlerOption func(*Handler)

// WithTokenStore shares an existing token store with the handler.
func WithTokenStore(store *TokenStore) HandlerOption {
	return func(h *Handler) {
		if store != nil {
			h.store = store
		}
	}
}

// WithPersister enables saving tokens between runs.
func WithPersister(p Persister) HandlerOption {
	return func(h *Handler) {
		h.persister = p
	}
}

// WithTokenClient replaces the token endpoint client.
func WithTokenClient(c *pkgoauth.Client) HandlerOption {
	return func(h *Handler) {
		if c != nil {
			h.client = c
		}
	}
}

// WithEndpoints overrides the derived OAuth hosts.
func WithEndpoints(endpoints pkgoauth.Endpoints) HandlerOption {
	return func(h *Handler) {
		h.endpoints = endpoints
		h.endpointsOverridden = true
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithCodeVerifier reuses a PKCE verifier from an earlier process, so an
// authorization URL printed by one run can be completed by another. It is
// ignored for confidential clients.
func WithCodeVerifier(verifier string) HandlerOption {
	return func(h *Handler) {
		h.codeVerifier = verifier
	}
}

// Handler drives the three-legged OAuth flow for one app and keeps the
// resulting tokens usable.
//
// All methods are safe for concurrent use. Refreshes are serialized by
// refreshMu so concurrent callers never spend the same refresh token twice.
type Handler struct {
	cfg                 pkgoauth.Config
	endpoints           pkgoauth.Endpoints
	endpointsOverridden bool
	pkce                *pkgoauth.PKCEChallenge
	codeVerifier        string

	store      *TokenStore
	persister  Persister
	persistKey string
	client     *pkgoauth.Client
	now        func() time.Time

	refreshMu sync.Mutex
}

// NewHandler validates the configuration, derives the OAuth hosts from the
// endpoint and, for public clients, generates the PKCE pair.
func NewHandler(cfg HandlerConfig, opts ...HandlerOption) (*Handler, error) {
	if strings.TrimSpace(cfg.OAuth.AppID) == "" {
		return nil, &ConfigurationError{Field: "app_id", Message: "app id is required"}
	}
	if strings.TrimSpace(cfg.OAuth.ClientID) == "" {
		return nil, &ConfigurationError{Field: "client_id", Message: "client id is required"}
	}

	oauthCfg := cfg.OAuth
	oauthCfg.ResponseType = pkgoauth.ResponseTypeCode

	h := &Handler{
		cfg:    oauthCfg,
		store:  NewTokenStore(),
		client: pkgoauth.NewClient(pkgoauth.WithLogger(logging.Subsystem("TokenClient"))),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(h)
	}

	if !h.endpointsOverridden && cfg.Endpoint != "" {
		endpoints, err := pkgoauth.DeriveEndpoints(cfg.Endpoint)
		if err != nil {
			return nil, &ConfigurationError{Field: "endpoint", Message: "cannot derive OAuth URLs", Err: err}
		}
		h.endpoints = endpoints
	}

	if oauthCfg.UsePKCE() {
		if h.codeVerifier != "" {
			h.pkce = &pkgoauth.PKCEChallenge{
				CodeVerifier:        h.codeVerifier,
				CodeChallenge:       pkgoauth.S256Challenge(h.codeVerifier),
				CodeChallengeMethod: pkgoauth.CodeChallengeMethodS256,
			}
		} else {
			h.pkce = pkgoauth.GeneratePKCE()
		}
	}

	h.persistKey = PersistenceKey(h.endpoints.TokenURL(), oauthCfg.AppID)
	if h.persister != nil {
		h.loadPersisted()
	}

	return h, nil
}

func (h *Handler) loadPersisted() {
	state, err := h.persister.Load(h.persistKey)
	if err != nil {
		logging.Warn(subsystem, "Ignoring unreadable stored token for app %s: %v", h.cfg.AppID, err)
		return
	}
	if state == nil {
		return
	}
	h.store.Replace(*state)
	logging.Debug(subsystem, "Loaded stored token for app %s", h.cfg.AppID)
}

// Config returns the app registration.
func (h *Handler) Config() pkgoauth.Config {
	return h.cfg
}

// Store returns the shared token store.
func (h *Handler) Store() *TokenStore {
	return h.store
}

// UsePKCE reports whether the public-client flow is in use.
func (h *Handler) UsePKCE() bool {
	return h.pkce != nil
}

// CodeVerifier returns the PKCE verifier, or "" for confidential clients.
func (h *Handler) CodeVerifier() string {
	if h.pkce == nil {
		return ""
	}
	return h.pkce.CodeVerifier
}

// CodeChallenge returns the PKCE challenge, or "" for confidential clients.
func (h *Handler) CodeChallenge() string {
	if h.pkce == nil {
		return ""
	}
	return h.pkce.CodeChallenge
}

// AuthorizationBaseURL returns the browser-facing app host.
func (h *Handler) AuthorizationBaseURL() string {
	return h.endpoints.AuthorizationBaseURL
}

// DeveloperHubBaseURL returns the developer hub host.
func (h *Handler) DeveloperHubBaseURL() string {
	return h.endpoints.DeveloperHubBaseURL
}

// TokenURL returns the token endpoint.
func (h *Handler) TokenURL() string {
	return h.endpoints.TokenURL()
}

// Authorize builds the URL the user opens to grant the app access.
func (h *Handler) Authorize() (string, error) {
	if h.endpoints.AuthorizationBaseURL == "" {
		return "", &ConfigurationError{Field: "endpoint", Message: "OAuth base URL is not set"}
	}

	authURL, err := pkgoauth.BuildAuthorizationURL(h.endpoints.AuthorizationBaseURL, h.cfg, h.pkce)
	if err != nil {
		return "", &ConfigurationError{Field: "endpoint", Message: "cannot build authorization URL", Err: err}
	}

	logging.Info(subsystem, "Authorization URL generated for app %s (pkce=%t)", h.cfg.AppID, h.UsePKCE())
	return authURL, nil
}

// HandleRedirect extracts the authorization code from the URL the
// authorization server redirected to and exchanges it for tokens.
func (h *Handler) HandleRedirect(ctx context.Context, redirectURL string) (*pkgoauth.TokenResponse, error) {
	parsed, err := url.Parse(redirectURL)
	if err != nil {
		return nil, &ArgumentError{Argument: "redirect_url", Message: fmt.Sprintf("cannot parse %q", redirectURL)}
	}

	query := parsed.Query()
	if errCode := query.Get("error"); errCode != "" {
		msg := "authorization denied: " + errCode
		if desc := query.Get("error_description"); desc != "" {
			msg += " - " + desc
		}
		return nil, &ArgumentError{Argument: "redirect_url", Message: msg}
	}

	code := query.Get("code")
	if code == "" {
		return nil, &ArgumentError{Argument: "code", Message: "authorization code not found in redirect URL"}
	}

	return h.ExchangeCodeForToken(ctx, code)
}

// ExchangeCodeForToken trades an authorization code for tokens and records them.
func (h *Handler) ExchangeCodeForToken(ctx context.Context, code string) (*pkgoauth.TokenResponse, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &ArgumentError{Argument: "code", Message: "authorization code is required"}
	}
	tokenURL := h.TokenURL()
	if tokenURL == "" {
		return nil, &ConfigurationError{Field: "endpoint", Message: "token endpoint is not set"}
	}

	req := pkgoauth.ExchangeRequest{
		Code:        code,
		RedirectURI: h.cfg.RedirectURI,
		ClientID:    h.cfg.ClientID,
		AppID:       h.cfg.AppID,
	}
	if h.pkce != nil {
		req.CodeVerifier = h.pkce.CodeVerifier
	} else {
		req.ClientSecret = h.cfg.ClientSecret
	}

	resp, err := h.client.ExchangeCode(ctx, tokenURL, req)
	if err != nil {
		logging.Audit(logging.AuditEvent{Action: "token_exchange", Outcome: "failure", Target: h.cfg.AppID, Error: err.Error()})
		return nil, newTransportError(PhaseTokenExchange, err)
	}

	state := h.saveTokens(resp)
	logging.Audit(logging.AuditEvent{Action: "token_exchange", Outcome: "success", Target: h.cfg.AppID, OrganizationUID: state.OrganizationUID})
	return resp, nil
}

// saveTokens is the one persistence routine for exchange and refresh responses.
func (h *Handler) saveTokens(resp *pkgoauth.TokenResponse) TokenState {
	state := h.store.Apply(resp, h.now())
	h.persist(state)
	return state
}

func (h *Handler) persist(state TokenState) {
	if h.persister == nil {
		return
	}
	if err := h.persister.Save(h.persistKey, state); err != nil {
		// The in-memory token stays usable for this process.
		logging.Warn(subsystem, "Failed to persist token for app %s: %v", h.cfg.AppID, err)
	}
}

// IsTokenExpired reports whether the access token needs a refresh.
// Without a recorded expiry the token counts as expired.
func (h *Handler) IsTokenExpired() bool {
	return h.store.IsExpired(h.now())
}

// GetValidAccessToken returns an access token, refreshing it first if it expired.
func (h *Handler) GetValidAccessToken(ctx context.Context) (string, error) {
	if err := h.EnsureValidToken(ctx); err != nil {
		return "", err
	}

	token := h.store.AccessToken()
	if token == "" {
		return "", ErrTokenNotAvailable
	}
	return token, nil
}

// EnsureValidToken refreshes the access token if it expired. The expiry is
// checked again after acquiring the refresh lock, so concurrent callers
// trigger one refresh.
func (h *Handler) EnsureValidToken(ctx context.Context) error {
	if !h.IsTokenExpired() {
		return nil
	}

	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	if !h.IsTokenExpired() {
		return nil
	}

	_, err := h.refreshLocked(ctx)
	return err
}

// RefreshAccessToken uses the refresh token to obtain a new access token.
func (h *Handler) RefreshAccessToken(ctx context.Context) (string, error) {
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	return h.refreshLocked(ctx)
}

// RefreshRejectedToken refreshes after the server rejected the access token
// rejected. When another caller already replaced that token the refresh is
// skipped.
func (h *Handler) RefreshRejectedToken(ctx context.Context, rejected string) error {
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	if current := h.store.AccessToken(); current != "" && current != rejected {
		return nil
	}

	_, err := h.refreshLocked(ctx)
	return err
}

// refreshLocked performs the refresh grant. Callers must hold refreshMu.
func (h *Handler) refreshLocked(ctx context.Context) (string, error) {
	refreshToken := h.store.RefreshToken()
	if refreshToken == "" {
		return "", &ArgumentError{Argument: "refresh_token", Message: "no refresh token available"}
	}
	tokenURL := h.TokenURL()
	if tokenURL == "" {
		return "", &ConfigurationError{Field: "endpoint", Message: "token endpoint is not set"}
	}

	resp, err := h.client.RefreshToken(ctx, tokenURL, pkgoauth.RefreshRequest{
		RefreshToken: refreshToken,
		ClientID:     h.cfg.ClientID,
		AppID:        h.cfg.AppID,
		ClientSecret: h.cfg.ClientSecret,
	})
	if err != nil {
		logging.Audit(logging.AuditEvent{Action: "token_refresh", Outcome: "failure", Target: h.cfg.AppID, Error: err.Error()})
		return "", newTransportError(PhaseTokenRefresh, err)
	}

	state := h.saveTokens(resp)
	logging.Audit(logging.AuditEvent{Action: "token_refresh", Outcome: "success", Target: h.cfg.AppID, OrganizationUID: state.OrganizationUID})
	return state.AccessToken, nil
}

// Logout clears the tokens from memory and storage. With revoke set it first
// tries to delete the app authorization of the current user; failures there
// are logged and ignored. Logout always returns true.
func (h *Handler) Logout(ctx context.Context, revoke bool) bool {
	if revoke {
		if err := h.revokeAuthorization(ctx); err != nil {
			logging.Warn(subsystem, "Revoking authorization for app %s failed, clearing tokens anyway: %v", h.cfg.AppID, err)
		}
	}

	h.store.Clear()
	if h.persister != nil {
		if err := h.persister.Delete(h.persistKey); err != nil {
			logging.Warn(subsystem, "Failed to delete stored token for app %s: %v", h.cfg.AppID, err)
		}
	}

	logging.Audit(logging.AuditEvent{Action: "logout", Outcome: "success", Target: h.cfg.AppID})
	return true
}

func (h *Handler) revokeAuthorization(ctx context.Context) error {
	state := h.store.Snapshot()
	if state.AccessToken == "" {
		return nil
	}
	if h.endpoints.DeveloperHubBaseURL == "" {
		return &ConfigurationError{Field: "endpoint", Message: "developer hub URL is not set"}
	}

	creds := pkgoauth.BearerCredentials{AccessToken: state.AccessToken, OrganizationUID: state.OrganizationUID}
	auths, err := h.client.ListAuthorizations(ctx, h.endpoints, h.cfg.AppID, creds)
	if err != nil {
		return fmt.Errorf("failed to list authorizations: %w", err)
	}

	for _, auth := range auths {
		if state.UserUID != "" && auth.User.UID != state.UserUID {
			continue
		}
		if err := h.client.RevokeAuthorization(ctx, h.endpoints, h.cfg.AppID, auth.AuthorizationUID, creds); err != nil {
			return fmt.Errorf("failed to revoke authorization: %w", err)
		}
		logging.Audit(logging.AuditEvent{Action: "authorization_revoke", Outcome: "success", Target: h.cfg.AppID, OrganizationUID: state.OrganizationUID})
		return nil
	}

	logging.Debug(subsystem, "No authorization found to revoke for app %s", h.cfg.AppID)
	return nil
}

// Authorizations lists the authorizations granted to the app, refreshing
// the access token first if needed.
func (h *Handler) Authorizations(ctx context.Context) ([]pkgoauth.Authorization, error) {
	accessToken, err := h.GetValidAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if h.endpoints.DeveloperHubBaseURL == "" {
		return nil, &ConfigurationError{Field: "endpoint", Message: "developer hub URL is not set"}
	}

	creds := pkgoauth.BearerCredentials{AccessToken: accessToken, OrganizationUID: h.store.OrganizationUID()}
	auths, err := h.client.ListAuthorizations(ctx, h.endpoints, h.cfg.AppID, creds)
	if err != nil {
		return nil, newTransportError(PhaseRequest, err)
	}
	return auths, nil
}

// AccessToken returns the current access token without refreshing.
func (h *Handler) AccessToken() string { return h.store.AccessToken() }

// SetAccessToken overwrites the access token.
func (h *Handler) SetAccessToken(token string) {
	h.store.SetAccessToken(token)
	h.persist(h.store.Snapshot())
}

// RefreshToken returns the current refresh token.
func (h *Handler) RefreshToken() string { return h.store.RefreshToken() }

// SetRefreshToken overwrites the refresh token.
func (h *Handler) SetRefreshToken(token string) {
	h.store.SetRefreshToken(token)
	h.persist(h.store.Snapshot())
}

// OrganizationUID returns the organization of the current token.
func (h *Handler) OrganizationUID() string { return h.store.OrganizationUID() }

// SetOrganizationUID overwrites the organization uid.
func (h *Handler) SetOrganizationUID(uid string) {
	h.store.SetOrganizationUID(uid)
	h.persist(h.store.Snapshot())
}

// UserUID returns the user of the current token.
func (h *Handler) UserUID() string { return h.store.UserUID() }

// SetUserUID overwrites the user uid.
func (h *Handler) SetUserUID(uid string) {
	h.store.SetUserUID(uid)
	h.persist(h.store.Snapshot())
}

// TokenExpiryTime returns the recorded expiry, or the zero time.
func (h *Handler) TokenExpiryTime() time.Time { return h.store.ExpiresAt() }

// SetTokenExpiryTime overwrites the expiry. Normal operation derives it from
// token responses; this exists for restoring state and for tests.
func (h *Handler) SetTokenExpiryTime(t time.Time) {
	h.store.SetExpiresAt(t)
	h.persist(h.store.Snapshot())
}

// SetTokenExpiryUnix overwrites the expiry from a unix timestamp in seconds
// or milliseconds.
func (h *Handler) SetTokenExpiryUnix(value float64) {
	h.store.SetExpiresAtUnix(value)
	h.persist(h.store.Snapshot())
}

// Status describes the session without exposing token values.
func (h *Handler) Status() auth.Status {
	state := h.store.Snapshot()
	status := auth.Status{
		AppID:           h.cfg.AppID,
		ClientID:        h.cfg.ClientID,
		Flow:            "client_secret",
		TokenURL:        h.TokenURL(),
		ExpiresAt:       state.ExpiresAt,
		HasRefreshToken: state.RefreshToken != "",
		OrganizationUID: state.OrganizationUID,
		UserUID:         state.UserUID,
	}
	if h.UsePKCE() {
		status.Flow = "pkce"
	}

	switch {
	case state.AccessToken == "":
		status.State = auth.StateNotLoggedIn
	case h.IsTokenExpired():
		status.State = auth.StateExpired
	default:
		status.State = auth.StateAuthenticated
	}
	return status
}

// Token implements oauth2.TokenSource.
func (h *Handler) Token() (*oauth2.Token, error) {
	accessToken, err := h.GetValidAccessToken(context.Background())
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		RefreshToken: h.store.RefreshToken(),
		Expiry:       h.store.ExpiresAt(),
	}, nil
}

// HTTPClient returns an *http.Client that sends the handler's bearer token
// with every request, without the interceptor's retry policy.
func (h *Handler) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, h)
}

// newTransportError wraps a token endpoint failure, keeping the HTTP status
// when there is one.
func newTransportError(phase string, err error) *TransportError {
	transportErr := &TransportError{Phase: phase, Err: err}
	var httpErr *pkgoauth.HTTPError
	if errors.As(err, &httpErr) {
		transportErr.StatusCode = httpErr.StatusCode
	}
	return transportErr
}
