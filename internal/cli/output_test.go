package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/contentstack/contentstack-management-go/pkg/auth"
	"github.com/contentstack/contentstack-management-go/pkg/oauth"
)

func testStatus(now time.Time) auth.Status {
	return auth.Status{
		State:           auth.StateAuthenticated,
		AppID:           "app-1",
		ClientID:        "client-1",
		Flow:            "pkce",
		TokenURL:        "https://developerhub-api.contentstack.com/token",
		ExpiresAt:       now.Add(30 * time.Minute),
		HasRefreshToken: true,
		OrganizationUID: "org-1",
		UserUID:         "user-1",
	}
}

func TestValidateOutputFormat(t *testing.T) {
	for _, f := range []string{"table", "json", "yaml"} {
		assert.NoError(t, ValidateOutputFormat(f))
	}
	assert.Error(t, ValidateOutputFormat("xml"))
}

func TestWriteStatus_Table(t *testing.T) {
	now := time.Now()
	var buf bytes.Buffer
	require.NoError(t, WriteStatus(&buf, testStatus(now), OutputFormatTable, now))

	out := buf.String()
	assert.Contains(t, out, "Authenticated")
	assert.Contains(t, out, "app-1")
	assert.Contains(t, out, "pkce")
	assert.Contains(t, out, "in 30m0s")
	assert.Contains(t, out, "org-1")
}

func TestWriteStatus_NotConfigured(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatus(&buf, auth.Status{State: auth.StateNotConfigured}, OutputFormatTable, time.Now()))

	assert.Contains(t, buf.String(), "Not configured")
	assert.NotContains(t, buf.String(), "Token URL")
}

func TestWriteStatus_JSON(t *testing.T) {
	now := time.Now()
	var buf bytes.Buffer
	require.NoError(t, WriteStatus(&buf, testStatus(now), OutputFormatJSON, now))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "authenticated", got["state"])
	assert.Equal(t, "app-1", got["app_id"])
	assert.Equal(t, true, got["has_refresh_token"])
	assert.NotContains(t, buf.String(), "access_token")
}

func TestWriteStatus_YAML(t *testing.T) {
	now := time.Now()
	var buf bytes.Buffer
	require.NoError(t, WriteStatus(&buf, testStatus(now), OutputFormatYAML, now))

	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "pkce", got["flow"])
	assert.Equal(t, "user-1", got["user_uid"])
}

func TestWriteAuthorizations(t *testing.T) {
	auths := []oauth.Authorization{{AuthorizationUID: "auth-1"}}
	auths[0].User.UID = "user-1"

	var buf bytes.Buffer
	require.NoError(t, WriteAuthorizations(&buf, auths, OutputFormatTable))
	assert.Contains(t, buf.String(), "auth-1")
	assert.Contains(t, buf.String(), "user-1")

	buf.Reset()
	require.NoError(t, WriteAuthorizations(&buf, nil, OutputFormatTable))
	assert.Contains(t, buf.String(), "No authorizations found")

	buf.Reset()
	require.NoError(t, WriteAuthorizations(&buf, nil, OutputFormatJSON))
	assert.JSONEq(t, `[]`, buf.String())

	buf.Reset()
	require.NoError(t, WriteAuthorizations(&buf, auths, OutputFormatJSON))
	assert.JSONEq(t, `[{"authorization_uid":"auth-1","user":{"uid":"user-1"}}]`, buf.String())
}

func TestWriteBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBody(&buf, []byte(`{"stacks":[{"uid":"s1"}]}`), OutputFormatTable))
	assert.Equal(t, "{\n  \"stacks\": [\n    {\n      \"uid\": \"s1\"\n    }\n  ]\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteBody(&buf, []byte(`{"stacks":[{"uid":"s1"}]}`), OutputFormatYAML))
	assert.Contains(t, buf.String(), "uid: s1")

	buf.Reset()
	require.NoError(t, WriteBody(&buf, []byte("plain text"), OutputFormatJSON))
	assert.Equal(t, "plain text", buf.String())
}

func TestProgress_Quiet(t *testing.T) {
	var buf bytes.Buffer
	p := StartProgress(&buf, "Working...", true)
	p.Success("done")
	p.Fail("failed")
	p.Stop()

	var nilProgress *Progress
	nilProgress.Stop()

	assert.Empty(t, buf.String())
}
