package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Run("creates client with defaults", func(t *testing.T) {
		c := NewClient()
		if c.httpClient == nil {
			t.Fatal("expected httpClient to be set")
		}
		if c.httpClient.Timeout != DefaultHTTPTimeout {
			t.Errorf("expected timeout %v, got %v", DefaultHTTPTimeout, c.httpClient.Timeout)
		}
		if c.logger == nil {
			t.Error("expected logger to be set")
		}
	})

	t.Run("applies options", func(t *testing.T) {
		customHTTP := &http.Client{Timeout: 10 * time.Second}

		c := NewClient(WithHTTPClient(customHTTP), WithUserAgent("sdk/1.0"))

		if c.httpClient != customHTTP {
			t.Error("expected custom httpClient to be set")
		}
		if c.userAgent != "sdk/1.0" {
			t.Errorf("expected user agent to be set, got %q", c.userAgent)
		}
	})

	t.Run("nil options keep defaults", func(t *testing.T) {
		c := NewClient(WithHTTPClient(nil), WithLogger(nil))
		if c.httpClient == nil || c.logger == nil {
			t.Error("expected nil options to be ignored")
		}
	})
}

// tokenServer records the last form posted to /token and answers with resp.
func tokenServer(t *testing.T, status int, resp interface{}, got *url.Values) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("expected form content type, got %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		if got != nil {
			*got = r.PostForm
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestExchangeCode(t *testing.T) {
	t.Run("PKCE exchange sends verifier", func(t *testing.T) {
		var form url.Values
		server := tokenServer(t, http.StatusOK, map[string]interface{}{
			"access_token":     "access",
			"refresh_token":    "refresh",
			"expires_in":       3600,
			"organization_uid": "org-1",
			"user_uid":         "user-1",
		}, &form)
		defer server.Close()

		c := NewClient(WithHTTPClient(server.Client()))
		token, err := c.ExchangeCode(context.Background(), server.URL+"/token", ExchangeRequest{
			Code:         "auth-code",
			RedirectURI:  "http://localhost:8184",
			ClientID:     "client-1",
			AppID:        "app-1",
			CodeVerifier: "verifier",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if token.AccessToken != "access" || token.RefreshToken != "refresh" {
			t.Errorf("unexpected tokens: %+v", token)
		}
		if token.OrganizationUID != "org-1" || token.UserUID != "user-1" {
			t.Errorf("unexpected identifiers: %+v", token)
		}

		want := map[string]string{
			"grant_type":    "authorization_code",
			"code":          "auth-code",
			"redirect_uri":  "http://localhost:8184",
			"client_id":     "client-1",
			"app_id":        "app-1",
			"code_verifier": "verifier",
		}
		for key, value := range want {
			if form.Get(key) != value {
				t.Errorf("form[%s] = %q, want %q", key, form.Get(key), value)
			}
		}
		if form.Has("client_secret") {
			t.Error("PKCE exchange must not send client_secret")
		}
	})

	t.Run("confidential exchange sends secret", func(t *testing.T) {
		var form url.Values
		server := tokenServer(t, http.StatusOK, map[string]interface{}{"access_token": "access"}, &form)
		defer server.Close()

		c := NewClient(WithHTTPClient(server.Client()))
		_, err := c.ExchangeCode(context.Background(), server.URL+"/token", ExchangeRequest{
			Code:         "auth-code",
			ClientID:     "client-1",
			AppID:        "app-1",
			ClientSecret: "secret",
			CodeVerifier: "ignored",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if form.Get("client_secret") != "secret" {
			t.Errorf("expected client_secret, got %q", form.Get("client_secret"))
		}
		if form.Has("code_verifier") {
			t.Error("confidential exchange must not send code_verifier")
		}
	})

	t.Run("non-2xx returns HTTPError", func(t *testing.T) {
		server := tokenServer(t, http.StatusBadRequest, map[string]string{
			"error":             "invalid_grant",
			"error_description": "code expired",
		}, nil)
		defer server.Close()

		c := NewClient(WithHTTPClient(server.Client()))
		_, err := c.ExchangeCode(context.Background(), server.URL+"/token", ExchangeRequest{Code: "x"})

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("expected HTTPError, got %v", err)
		}
		if httpErr.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", httpErr.StatusCode)
		}
		if httpErr.Code != "invalid_grant" || httpErr.Description != "code expired" {
			t.Errorf("unexpected error details: %+v", httpErr)
		}
	})

	t.Run("missing access token is an error", func(t *testing.T) {
		server := tokenServer(t, http.StatusOK, map[string]string{"token_type": "Bearer"}, nil)
		defer server.Close()

		c := NewClient(WithHTTPClient(server.Client()))
		if _, err := c.ExchangeCode(context.Background(), server.URL+"/token", ExchangeRequest{Code: "x"}); err == nil {
			t.Error("expected error for response without access_token")
		}
	})
}

func TestRefreshToken(t *testing.T) {
	var form url.Values
	server := tokenServer(t, http.StatusOK, map[string]interface{}{
		"access_token":  "new-access",
		"refresh_token": "new-refresh",
		"expires_in":    "1800",
	}, &form)
	defer server.Close()

	c := NewClient(WithHTTPClient(server.Client()))
	token, err := c.RefreshToken(context.Background(), server.URL+"/token", RefreshRequest{
		RefreshToken: "old-refresh",
		ClientID:     "client-1",
		AppID:        "app-1",
		ClientSecret: "secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.AccessToken != "new-access" || token.ExpiresIn != 1800 {
		t.Errorf("unexpected token: %+v", token)
	}

	want := map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": "old-refresh",
		"client_id":     "client-1",
		"app_id":        "app-1",
		"client_secret": "secret",
	}
	for key, value := range want {
		if form.Get(key) != value {
			t.Errorf("form[%s] = %q, want %q", key, form.Get(key), value)
		}
	}
}

func TestAuthorizations(t *testing.T) {
	var deleted string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("organization_uid") != "org-1" {
			t.Errorf("expected organization_uid header, got %q", r.Header.Get("organization_uid"))
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/manifests/app-1/authorizations":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":[{"authorization_uid":"auth-1","user":{"uid":"user-1"}}]}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/manifests/app-1/authorizations/auth-1":
			deleted = "auth-1"
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	endpoints := Endpoints{DeveloperHubBaseURL: server.URL}
	creds := BearerCredentials{AccessToken: "access", OrganizationUID: "org-1"}
	c := NewClient(WithHTTPClient(server.Client()))

	auths, err := c.ListAuthorizations(context.Background(), endpoints, "app-1", creds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(auths) != 1 || auths[0].AuthorizationUID != "auth-1" || auths[0].User.UID != "user-1" {
		t.Fatalf("unexpected authorizations: %+v", auths)
	}

	if err := c.RevokeAuthorization(context.Background(), endpoints, "app-1", "auth-1", creds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "auth-1" {
		t.Error("expected authorization to be deleted")
	}

	_, err = c.ListAuthorizations(context.Background(), endpoints, "app-1", BearerCredentials{AccessToken: "wrong"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 HTTPError, got %v", err)
	}
}

func TestHTTPError_Message(t *testing.T) {
	err := newHTTPError("https://x/token", 500, []byte(`{"error_message":"boom"}`))
	if err.Error() != "https://x/token returned status 500: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}

	err = newHTTPError("https://x/token", 502, []byte("<html>bad gateway</html>"))
	if err.Error() != "https://x/token returned status 502" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
