package mcp

import (
	"strings"
	"sync"
	"time"

	"onec-gateway/internal/types"

	"github.com/google/uuid"
)

// Session is the state of one MCP client connection.
type Session struct {
	ID              string
	ProtocolVersion string
	Created         time.Time
	LastSeen        time.Time
	ConversationID  string
}

// SessionStore keeps MCP sessions in memory with sliding TTL expiry:
// every successful lookup refreshes the session's last-seen time, and
// expired sessions are removed on access.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewSessionStore(config types.SessionConfig) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      config.MCPSessionTTL,
	}
}

// Create registers a new session and returns a copy of it. The id uses hex
// only, safe for transport in an HTTP header.
func (s *SessionStore) Create(protocolVersion string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &Session{
		ID:              strings.ReplaceAll(uuid.NewString(), "-", ""),
		ProtocolVersion: protocolVersion,
		Created:         now,
		LastSeen:        now,
	}
	s.sessions[sess.ID] = sess
	return *sess
}

// Get returns a copy of the session and refreshes its last-seen time. An
// expired session is deleted and reported as missing.
func (s *SessionStore) Get(sessionID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	if time.Since(sess.LastSeen) > s.ttl {
		delete(s.sessions, sessionID)
		return Session{}, false
	}
	sess.LastSeen = time.Now()
	return *sess, true
}

// Conversation returns the upstream conversation bound to the session, if
// any. Uses Get semantics, so it also touches the session.
func (s *SessionStore) Conversation(sessionID string) string {
	sess, ok := s.Get(sessionID)
	if !ok {
		return ""
	}
	return sess.ConversationID
}

// BindConversation ties an upstream conversation to the session.
func (s *SessionStore) BindConversation(sessionID, conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	sess.ConversationID = conversationID
	return true
}

// Cleanup removes all expired sessions.
func (s *SessionStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if time.Since(sess.LastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions, expired ones included until the
// next access or Cleanup.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
