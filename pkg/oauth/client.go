package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
const DefaultHTTPTimeout = 30 * time.Second

// maxErrorBodyBytes bounds how much of an error body is kept for diagnostics.
const maxErrorBodyBytes = 4096

// HTTPError is returned when an OAuth endpoint answers with a non-2xx status.
type HTTPError struct {
	// StatusCode is the HTTP status returned.
	StatusCode int

	// Endpoint is the URL that was called.
	Endpoint string

	// Code is the OAuth error code (error field), if the body carried one.
	Code string

	// Description is the human-readable reason, if the body carried one.
	Description string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
	switch {
	case e.Code != "" && e.Description != "":
		msg += ": " + e.Code + " - " + e.Description
	case e.Description != "":
		msg += ": " + e.Description
	case e.Code != "":
		msg += ": " + e.Code
	}
	return msg
}

// Client handles the OAuth token endpoint and the developer hub
// authorization endpoints.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// ClientOption configures the OAuth client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent sets the User-Agent sent to OAuth endpoints.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a new OAuth client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ExchangeRequest carries the parameters of an authorization_code grant.
// Exactly one of ClientSecret and CodeVerifier is sent, ClientSecret winning.
type ExchangeRequest struct {
	Code         string
	RedirectURI  string
	ClientID     string
	AppID        string
	ClientSecret string
	CodeVerifier string
}

// RefreshRequest carries the parameters of a refresh_token grant.
type RefreshRequest struct {
	RefreshToken string
	ClientID     string
	AppID        string
	ClientSecret string
}

// ExchangeCode exchanges an authorization code for tokens.
func (c *Client) ExchangeCode(ctx context.Context, tokenURL string, req ExchangeRequest) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {req.Code},
		"redirect_uri": {req.RedirectURI},
		"client_id":    {req.ClientID},
		"app_id":       {req.AppID},
	}
	if req.ClientSecret != "" {
		data.Set("client_secret", req.ClientSecret)
	} else {
		data.Set("code_verifier", req.CodeVerifier)
	}

	return c.doTokenRequest(ctx, tokenURL, data)
}

// RefreshToken obtains a new access token using a refresh token.
func (c *Client) RefreshToken(ctx context.Context, tokenURL string, req RefreshRequest) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {req.RefreshToken},
		"client_id":     {req.ClientID},
		"app_id":        {req.AppID},
	}
	if req.ClientSecret != "" {
		data.Set("client_secret", req.ClientSecret)
	}

	return c.doTokenRequest(ctx, tokenURL, data)
}

// doTokenRequest performs a token endpoint request.
func (c *Client) doTokenRequest(ctx context.Context, tokenURL string, data url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	c.setUserAgent(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("Token request failed",
			"grant_type", data.Get("grant_type"),
			"status", resp.StatusCode)
		return nil, newHTTPError(tokenURL, resp.StatusCode, body)
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response did not contain an access_token")
	}

	return &token, nil
}

// BearerCredentials authenticates developer hub calls made on behalf of a user.
type BearerCredentials struct {
	AccessToken     string
	OrganizationUID string
}

// ListAuthorizations returns the authorizations granted to an app.
func (c *Client) ListAuthorizations(ctx context.Context, endpoints Endpoints, appID string, creds BearerCredentials) ([]Authorization, error) {
	target := endpoints.AuthorizationsURL(appID)

	body, err := c.doBearerRequest(ctx, http.MethodGet, target, creds)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []Authorization `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse authorizations: %w", err)
	}
	return payload.Data, nil
}

// RevokeAuthorization deletes one authorization of an app.
func (c *Client) RevokeAuthorization(ctx context.Context, endpoints Endpoints, appID, authorizationUID string, creds BearerCredentials) error {
	target := endpoints.AuthorizationsURL(appID) + "/" + url.PathEscape(authorizationUID)
	_, err := c.doBearerRequest(ctx, http.MethodDelete, target, creds)
	return err
}

func (c *Client) doBearerRequest(ctx context.Context, method, target string, creds BearerCredentials) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	if creds.OrganizationUID != "" {
		req.Header.Set("organization_uid", creds.OrganizationUID)
	}
	c.setUserAgent(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(target, resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) setUserAgent(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-User-Agent", c.userAgent)
	}
}

// newHTTPError extracts an error code and description from the usual OAuth
// and management API error bodies.
func newHTTPError(endpoint string, status int, body []byte) *HTTPError {
	httpErr := &HTTPError{StatusCode: status, Endpoint: endpoint}

	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}

	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorMessage     string `json:"error_message"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		httpErr.Code = payload.Error
		switch {
		case payload.ErrorDescription != "":
			httpErr.Description = payload.ErrorDescription
		case payload.ErrorMessage != "":
			httpErr.Description = payload.ErrorMessage
		case payload.Message != "":
			httpErr.Description = payload.Message
		}
	}

	return httpErr
}
