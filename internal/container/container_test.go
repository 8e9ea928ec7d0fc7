package container

import (
	"testing"

	"onec-gateway/internal/session"
	"onec-gateway/internal/types"
	"onec-gateway/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestEnv sets up test environment variables
func setupTestEnv(t testing.TB) {
	t.Helper()
	t.Setenv("UPSTREAM_TOKEN", "test-upstream-token")
	t.Setenv("AUTH_KEY", "sk-test")
	t.Setenv("PORT", "6002")
}

// TestBuildContainer tests container creation
func TestBuildContainer(t *testing.T) {
	setupTestEnv(t)

	container, err := BuildContainer()
	require.NoError(t, err)
	require.NotNil(t, container)
}

// TestBuildContainer_ConfigManagerResolution tests config manager resolution
func TestBuildContainer_ConfigManagerResolution(t *testing.T) {
	setupTestEnv(t)

	container, err := BuildContainer()
	require.NoError(t, err)

	err = container.Invoke(func(cm types.ConfigManager) {
		assert.NotNil(t, cm)
		assert.Equal(t, 6002, cm.GetServerConfig().Port)
	})
	require.NoError(t, err)
}

// TestBuildContainer_CoreServices tests upstream client and store resolution
func TestBuildContainer_CoreServices(t *testing.T) {
	setupTestEnv(t)

	container, err := BuildContainer()
	require.NoError(t, err)

	err = container.Invoke(func(client *upstream.Client, conversations *session.ConversationStore) {
		assert.NotNil(t, client)
		assert.NotNil(t, conversations)
	})
	require.NoError(t, err)
}
