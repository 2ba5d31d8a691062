package chatsync

import (
	"sort"
	"strings"
	"sync"

	"freebie/internal/domain/chat"
)

// Store is the ordered, deduplicated message cache for exactly one active
// conversation. Mutations are total: an authoritative fetch replaces the
// whole visible set, so concurrent reconciles converge on whichever fetch
// resolves last.
type Store struct {
	mu             sync.RWMutex
	conversationID string
	messages       []chat.Message
}

// NewStore builds a store bound to a conversation.
func NewStore(conversationID string) *Store {
	return &Store{conversationID: conversationID}
}

// ConversationID returns the currently active conversation.
func (s *Store) ConversationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversationID
}

// Reset switches the active conversation and clears the cache. Fetches
// issued for the previous conversation become stale and are discarded by
// ReplaceAll.
func (s *Store) Reset(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationID = conversationID
	s.messages = nil
}

// ReplaceAll swaps the entire visible set for the result of an
// authoritative fetch. The fetch is tagged with the conversation it was
// issued for; a result arriving after the store moved to another
// conversation is dropped and false is returned. Input order is
// irrelevant: the store reorders oldest-first.
func (s *Store) ReplaceAll(conversationID string, messages []chat.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conversationID != s.conversationID {
		return false
	}
	next := make([]chat.Message, len(messages))
	for i, m := range messages {
		if !strings.HasPrefix(m.ID, chat.TempIDPrefix) {
			m.State = chat.MessageConfirmed
		}
		next[i] = m
	}
	sortMessages(next)
	s.messages = next
	return true
}

// AppendOptimistic makes a pending message visible at the newest position.
// It never blocks and ignores messages for another conversation.
func (s *Store) AppendOptimistic(m chat.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ConversationID != s.conversationID {
		return false
	}
	s.messages = append(s.messages, m)
	return true
}

// Rollback removes a message inserted via AppendOptimistic, restoring the
// store to its prior state. Only temporary identifiers are eligible.
func (s *Store) Rollback(tempID string) bool {
	if !strings.HasPrefix(tempID, chat.TempIDPrefix) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.messages {
		if m.ID == tempID {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the messages ordered oldest-first for display.
func (s *Store) Snapshot() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]chat.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len reports the number of visible messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func sortMessages(messages []chat.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}
