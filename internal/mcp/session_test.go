package mcp

import (
	"testing"
	"time"

	"onec-gateway/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionStore(ttl time.Duration) *SessionStore {
	return NewSessionStore(types.SessionConfig{MCPSessionTTL: ttl})
}

// TestSessionStore_CreateAndGet tests the basic lifecycle
func TestSessionStore_CreateAndGet(t *testing.T) {
	store := newTestSessionStore(time.Hour)

	created := store.Create("2025-03-26")
	assert.Len(t, created.ID, 32)
	assert.Equal(t, "2025-03-26", created.ProtocolVersion)

	got, ok := store.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, created.ID, got.ID)

	_, ok = store.Get("unknown")
	assert.False(t, ok)
}

// TestSessionStore_Expiry tests get-side expiry and sliding TTL
func TestSessionStore_Expiry(t *testing.T) {
	store := newTestSessionStore(time.Hour)
	sess := store.Create("")

	// Age the session past the TTL
	store.mu.Lock()
	store.sessions[sess.ID].LastSeen = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()

	_, ok := store.Get(sess.ID)
	assert.False(t, ok)
	// Expired session is removed on access
	assert.Equal(t, 0, store.Len())
}

// TestSessionStore_TouchOnGet tests that access refreshes last-seen
func TestSessionStore_TouchOnGet(t *testing.T) {
	store := newTestSessionStore(time.Hour)
	sess := store.Create("")

	store.mu.Lock()
	store.sessions[sess.ID].LastSeen = time.Now().Add(-50 * time.Minute)
	store.mu.Unlock()

	_, ok := store.Get(sess.ID)
	require.True(t, ok)

	store.mu.Lock()
	lastSeen := store.sessions[sess.ID].LastSeen
	store.mu.Unlock()
	assert.WithinDuration(t, time.Now(), lastSeen, time.Second)
}

// TestSessionStore_Conversation tests conversation binding
func TestSessionStore_Conversation(t *testing.T) {
	store := newTestSessionStore(time.Hour)
	sess := store.Create("")

	assert.Equal(t, "", store.Conversation(sess.ID))
	assert.True(t, store.BindConversation(sess.ID, "conv-1"))
	assert.Equal(t, "conv-1", store.Conversation(sess.ID))

	assert.False(t, store.BindConversation("unknown", "conv-2"))
}

// TestSessionStore_Cleanup tests bulk expiry
func TestSessionStore_Cleanup(t *testing.T) {
	store := newTestSessionStore(time.Hour)
	stale := store.Create("")
	store.Create("")

	store.mu.Lock()
	store.sessions[stale.ID].LastSeen = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()

	assert.Equal(t, 1, store.Cleanup())
	assert.Equal(t, 1, store.Len())
}
