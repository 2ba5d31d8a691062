package chatsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"freebie/internal/domain/chat"
)

// Session runs the optimistic append protocol for one user inside the
// active conversation: a send is visible immediately as a pending entry,
// then either promoted by a wholesale reconcile fetch or rolled back with
// the typed text restored to the draft.
type Session struct {
	store    *Store
	sender   Sender
	fetcher  Fetcher
	logger   *slog.Logger
	senderID string

	mu    sync.Mutex
	draft string
}

// NewSession builds a session for senderID over the given store.
func NewSession(store *Store, sender Sender, fetcher Fetcher, senderID string, logger *slog.Logger) *Session {
	return &Session{
		store:    store,
		sender:   sender,
		fetcher:  fetcher,
		logger:   logger,
		senderID: senderID,
	}
}

// SetDraft replaces the composed-but-unsent text.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// Draft returns the composed-but-unsent text.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Send validates the current draft, appends it optimistically, clears the
// draft and issues the authoritative create. On success the store is
// reconciled via a fresh fetch; on failure the pending entry is rolled
// back and the draft restored. Validation failures leave both the store
// and the draft untouched.
//
// Multiple sends may be in flight at once; each pending entry is
// reconciled or rolled back independently.
func (s *Session) Send(ctx context.Context) error {
	content, err := chat.ValidateContent(s.Draft())
	if err != nil {
		return err
	}
	conversationID := s.store.ConversationID()
	pending := chat.NewPending(conversationID, s.senderID, content, time.Now())
	s.store.AppendOptimistic(pending)
	s.SetDraft("")

	if _, err := s.sender.Send(ctx, conversationID, s.senderID, content); err != nil {
		s.store.Rollback(pending.ID)
		s.SetDraft(content)
		if s.logger != nil {
			s.logger.Warn("message send failed, rolled back", "conversation_id", conversationID, "error", err)
		}
		return err
	}
	s.reconcile(ctx, conversationID)
	return nil
}

// reconcile promotes pending entries by wholesale replacement: the fetch
// result is authoritative and already deduplicated. A failed fetch keeps
// the last-known-good state; the next notification retries naturally.
func (s *Session) reconcile(ctx context.Context, conversationID string) {
	messages, err := s.fetcher.Fetch(ctx, conversationID, FetchLimit)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("reconcile fetch failed", "conversation_id", conversationID, "error", err)
		}
		return
	}
	if !s.store.ReplaceAll(conversationID, messages) && s.logger != nil {
		s.logger.Debug("discarded stale reconcile result", "conversation_id", conversationID)
	}
}
