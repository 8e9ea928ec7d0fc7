package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestEnv sets the minimum required environment
func setupTestEnv(t testing.TB) {
	t.Helper()
	t.Setenv("UPSTREAM_TOKEN", "test-upstream-token")
}

// TestNewManager tests creation with defaults
func TestNewManager(t *testing.T) {
	setupTestEnv(t)

	manager, err := NewManager()
	require.NoError(t, err)
	require.NotNil(t, manager)

	assert.Equal(t, 6002, manager.GetServerConfig().Port)
	assert.Equal(t, "0.0.0.0", manager.GetServerConfig().Host)
	assert.Equal(t, "https://code.1c.ai", manager.GetUpstreamConfig().BaseURL)
	assert.Equal(t, "russian", manager.GetUpstreamConfig().UILanguage)
	assert.Equal(t, 300, manager.GetSessionConfig().MaxActiveSessions)
	assert.Equal(t, time.Hour, manager.GetSessionConfig().ConversationTTL)
	assert.Equal(t, "1c-buddy", manager.GetPublicModelID())
}

// TestNewManager_Overrides tests environment overrides
func TestNewManager_Overrides(t *testing.T) {
	setupTestEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("UPSTREAM_BASE_URL", "https://example.test/")
	t.Setenv("MAX_ACTIVE_SESSIONS", "5")
	t.Setenv("SESSION_TTL", "60")
	t.Setenv("UPSTREAM_STEALTH_MODE", "true")
	t.Setenv("AUTH_KEY", "sk-gateway")

	manager, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, 8080, manager.GetServerConfig().Port)
	assert.Equal(t, "127.0.0.1", manager.GetServerConfig().Host)
	// Trailing slash is normalized away
	assert.Equal(t, "https://example.test", manager.GetUpstreamConfig().BaseURL)
	assert.Equal(t, 5, manager.GetSessionConfig().MaxActiveSessions)
	assert.Equal(t, time.Minute, manager.GetSessionConfig().ConversationTTL)
	assert.True(t, manager.GetUpstreamConfig().StealthMode)
	assert.Equal(t, "sk-gateway", manager.GetAuthConfig().Key)
}

// TestManagerValidation tests validation failures
func TestManagerValidation(t *testing.T) {
	tests := []struct {
		name     string
		setupEnv func(*testing.T)
		errorMsg string
	}{
		{
			name: "missing upstream token",
			setupEnv: func(t *testing.T) {
				t.Setenv("UPSTREAM_TOKEN", "")
			},
			errorMsg: "UPSTREAM_TOKEN is required",
		},
		{
			name: "port too high",
			setupEnv: func(t *testing.T) {
				setupTestEnv(t)
				t.Setenv("PORT", "70000")
			},
			errorMsg: "port must be between",
		},
		{
			name: "zero session capacity",
			setupEnv: func(t *testing.T) {
				setupTestEnv(t)
				t.Setenv("MAX_ACTIVE_SESSIONS", "0")
			},
			errorMsg: "MAX_ACTIVE_SESSIONS must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv(t)
			_, err := NewManager()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

// TestParseHelpers tests the env parsing helpers
func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 42, parseInteger("42", 0))
	assert.Equal(t, 7, parseInteger("", 7))
	assert.Equal(t, 7, parseInteger("nan", 7))

	assert.True(t, parseBoolean("true", false))
	assert.False(t, parseBoolean("", false))
	assert.True(t, parseBoolean("garbage", true))

	assert.Equal(t, []string{"a", "b"}, parseArray("a, b", nil))
	assert.Equal(t, []string{"x"}, parseArray("", []string{"x"}))
}
