package chat

import (
	"context"

	"freebie/internal/chatsync"
	domainchat "freebie/internal/domain/chat"
)

// SyncBackend adapts the chat service and the notification bus to the
// contract the sync core consumes, so an embedded client runs against the
// same pipeline as the HTTP API.
type SyncBackend struct {
	Service *Service
	Bus     chatsync.Subscriber
}

// Send persists a message through the service pipeline.
func (b SyncBackend) Send(ctx context.Context, conversationID, senderID, content string) (domainchat.Message, error) {
	return b.Service.SendMessage(ctx, conversationID, senderID, content)
}

// Fetch returns the newest messages first.
func (b SyncBackend) Fetch(ctx context.Context, conversationID string, limit int) ([]domainchat.Message, error) {
	return b.Service.MessagePage(ctx, conversationID, limit)
}

// Subscribe registers on the room channel.
func (b SyncBackend) Subscribe(channel string, notify func()) (chatsync.Subscription, error) {
	return b.Bus.Subscribe(channel, notify)
}

var _ chatsync.Backend = SyncBackend{}
