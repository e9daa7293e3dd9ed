package auth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Authenticated(t *testing.T) {
	assert.True(t, Status{State: StateAuthenticated}.Authenticated())
	assert.False(t, Status{State: StateExpired}.Authenticated())
	assert.False(t, Status{}.Authenticated())
}

func TestStatus_CanRefresh(t *testing.T) {
	assert.True(t, Status{State: StateExpired, HasRefreshToken: true}.CanRefresh())
	assert.False(t, Status{State: StateExpired}.CanRefresh())
	assert.False(t, Status{State: StateNotConfigured, HasRefreshToken: true}.CanRefresh())
}

func TestStatus_JSONOmitsZeroExpiry(t *testing.T) {
	data, err := json.Marshal(Status{State: StateNotLoggedIn, AppID: "app-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"not_logged_in","app_id":"app-1","has_refresh_token":false}`, string(data))
}
