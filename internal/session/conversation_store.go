// Package session holds the in-memory session state of the gateway: upstream
// conversation usage metadata and MCP protocol sessions. Everything here is
// ephemeral and process-local.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"onec-gateway/internal/types"

	"github.com/sirupsen/logrus"
)

// ConversationCreator registers new conversations upstream. Satisfied by the
// upstream client.
type ConversationCreator interface {
	CreateConversation(ctx context.Context, programmingLanguage string) (string, error)
}

type conversationRecord struct {
	createdAt    time.Time
	lastUsed     time.Time
	messageCount int
}

// ConversationStore tracks known conversation ids with usage metadata. The
// upstream owns the real validity of an id; this store is a bounded cache
// used for TTL expiry and capacity eviction, not a source of truth.
type ConversationStore struct {
	mu      sync.Mutex
	records map[string]*conversationRecord

	creator  ConversationCreator
	capacity int
	ttl      time.Duration
}

func NewConversationStore(creator ConversationCreator, config types.SessionConfig) *ConversationStore {
	return &ConversationStore{
		records:  make(map[string]*conversationRecord),
		creator:  creator,
		capacity: config.MaxActiveSessions,
		ttl:      config.ConversationTTL,
	}
}

// ResolveOrCreate returns the conversation id to use for a request. A usable
// caller-supplied id is returned as-is, lazily registering a local record if
// none exists. Otherwise a new conversation is created upstream after
// expiring stale records and evicting the least recently used one if the
// store is at capacity.
func (s *ConversationStore) ResolveOrCreate(ctx context.Context, suppliedID string, forceNew bool, programmingLanguage string) (string, error) {
	suppliedID = strings.TrimSpace(suppliedID)
	if !forceNew && suppliedID != "" {
		s.register(suppliedID)
		return suppliedID, nil
	}

	s.maintain()

	conversationID, err := s.creator.CreateConversation(ctx, programmingLanguage)
	if err != nil {
		return "", err
	}
	s.register(conversationID)
	return conversationID, nil
}

// Touch records a completed exchange on the conversation.
func (s *ConversationStore) Touch(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[conversationID]
	if !ok {
		record = &conversationRecord{createdAt: time.Now()}
		s.records[conversationID] = record
	}
	record.lastUsed = time.Now()
	record.messageCount++
}

// Len returns the number of tracked conversations.
func (s *ConversationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *ConversationStore) register(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.records[conversationID]; ok {
		record.lastUsed = time.Now()
		return
	}
	now := time.Now()
	s.records[conversationID] = &conversationRecord{createdAt: now, lastUsed: now}
}

// maintain expires stale records, then evicts least recently used records
// until the store is below capacity.
func (s *ConversationStore) maintain() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, record := range s.records {
		if now.Sub(record.lastUsed) > s.ttl {
			delete(s.records, id)
			logrus.Debugf("Expired conversation %s", id)
		}
	}

	for len(s.records) >= s.capacity {
		var oldestID string
		var oldest time.Time
		for id, record := range s.records {
			if oldestID == "" || record.lastUsed.Before(oldest) {
				oldestID = id
				oldest = record.lastUsed
			}
		}
		delete(s.records, oldestID)
		logrus.Infof("Evicted least recently used conversation %s", oldestID)
	}
}
