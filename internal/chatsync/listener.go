package chatsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"freebie/internal/domain/chat"
)

// ErrAlreadyAttached is returned when Attach is called on a live listener.
var ErrAlreadyAttached = errors.New("chatsync: listener already attached")

// Listener subscribes to a conversation's room-change channel and refreshes
// the store on every notification. The notification is a bell, not a delta:
// each delivery triggers an independent fetch-and-replace, which is safe
// because ReplaceAll is idempotent and total.
type Listener struct {
	store      *Store
	fetcher    Fetcher
	subscriber Subscriber
	logger     *slog.Logger
	limit      int

	mu  sync.Mutex
	sub Subscription
	ctx context.Context
}

// NewListener builds a listener over the store.
func NewListener(store *Store, fetcher Fetcher, subscriber Subscriber, logger *slog.Logger) *Listener {
	return &Listener{
		store:      store,
		fetcher:    fetcher,
		subscriber: subscriber,
		logger:     logger,
		limit:      FetchLimit,
	}
}

// Attach resets the store to the conversation, subscribes to its channel
// and performs an initial fetch. The context governs all fetches triggered
// by notifications until Detach.
func (l *Listener) Attach(ctx context.Context, conversationID string) error {
	l.mu.Lock()
	if l.sub != nil {
		l.mu.Unlock()
		return ErrAlreadyAttached
	}
	l.ctx = ctx
	l.store.Reset(conversationID)
	sub, err := l.subscriber.Subscribe(chat.Channel(conversationID), func() {
		l.refresh(conversationID)
	})
	if err != nil {
		l.mu.Unlock()
		return err
	}
	l.sub = sub
	l.mu.Unlock()

	l.refresh(conversationID)
	return nil
}

// Detach closes the subscription. The store keeps its last state; a later
// Attach resets it.
func (l *Listener) Detach() error {
	l.mu.Lock()
	sub := l.sub
	l.sub = nil
	l.mu.Unlock()
	if sub == nil {
		return nil
	}
	return sub.Close()
}

// refresh fetches the newest messages and replaces the store view. A fetch
// error is logged and leaves the last-known-good state; the listener stays
// subscribed and the next notification (or a manual refresh) retries.
func (l *Listener) refresh(conversationID string) {
	l.mu.Lock()
	ctx := l.ctx
	l.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	messages, err := l.fetcher.Fetch(ctx, conversationID, l.limit)
	if err != nil {
		if l.logger != nil {
			l.logger.Warn("notification fetch failed", "conversation_id", conversationID, "error", err)
		}
		return
	}
	if !l.store.ReplaceAll(conversationID, messages) && l.logger != nil {
		l.logger.Debug("discarded stale notification result", "conversation_id", conversationID)
	}
}
