// Package chatsync keeps a locally consistent, ordered view of one
// conversation's messages while entries arrive from optimistic local
// appends, server confirmations and room-change notifications.
package chatsync

import (
	"context"

	"freebie/internal/domain/chat"
)

// FetchLimit is how many of the newest messages a reconcile fetch requests.
const FetchLimit = 100

// Sender performs the authoritative message create. The backend assigns the
// permanent identifier and creation timestamp.
type Sender interface {
	Send(ctx context.Context, conversationID, senderID, content string) (chat.Message, error)
}

// Fetcher returns up to limit messages for a conversation, newest first.
// Results are deduplicated by identifier.
type Fetcher interface {
	Fetch(ctx context.Context, conversationID string, limit int) ([]chat.Message, error)
}

// Subscription is a cancellable registration on a notification channel.
type Subscription interface {
	Close() error
}

// Subscriber registers a payload-free callback on a channel. Delivery is
// at-least-once and unordered relative to the mutation it announces.
type Subscriber interface {
	Subscribe(channel string, notify func()) (Subscription, error)
}

// Backend aggregates the collaborator contracts the sync core consumes.
type Backend interface {
	Sender
	Fetcher
	Subscriber
}
