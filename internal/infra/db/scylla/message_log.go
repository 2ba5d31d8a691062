package scylla

import (
	"context"
	"errors"
	"time"

	"github.com/gocql/gocql"

	domainchat "freebie/internal/domain/chat"
)

// MessageLog stores the message history partitioned by conversation,
// clustered newest-first. Rooms, items and users live elsewhere; this
// table only ever appends and does partition deletes.
type MessageLog struct {
	session *gocql.Session
}

func NewMessageLog(session *gocql.Session) *MessageLog {
	return &MessageLog{session: session}
}

// Add inserts a row with a timeuuid identifier; that identifier doubles as
// the clustering key, so insert order within a partition is fetch order.
func (l *MessageLog) Add(ctx context.Context, conversationID, senderID, content string, at time.Time) (domainchat.Message, error) {
	if l.session == nil {
		return domainchat.Message{}, errors.New("scylla session not initialized")
	}
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()
	messageID := gocql.TimeUUID()
	if err := l.session.
		Query(`INSERT INTO messages (conversation_id, message_id, sender_id, content, created_at) VALUES (?, ?, ?, ?, ?)`,
			conversationID, messageID, senderID, content, at).
		WithContext(ctx).
		Consistency(gocql.Quorum).
		Exec(); err != nil {
		return domainchat.Message{}, err
	}
	return domainchat.Message{
		ID:             messageID.String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		State:          domainchat.MessageConfirmed,
		CreatedAt:      at,
		UpdatedAt:      at,
	}, nil
}

// List returns up to limit messages, newest first.
func (l *MessageLog) List(ctx context.Context, conversationID string, limit int) ([]domainchat.Message, error) {
	if l.session == nil {
		return nil, errors.New("scylla session not initialized")
	}
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	iter := l.session.
		Query(`SELECT conversation_id, message_id, sender_id, content, created_at FROM messages WHERE conversation_id = ? ORDER BY message_id DESC LIMIT ?`,
			conversationID, limit).
		WithContext(ctx).
		Consistency(gocql.One).
		Iter()

	messages := make([]domainchat.Message, 0, limit)
	var (
		cID       string
		messageID gocql.UUID
		sender    string
		content   string
		createdAt time.Time
	)
	for iter.Scan(&cID, &messageID, &sender, &content, &createdAt) {
		messages = append(messages, domainchat.Message{
			ID:             messageID.String(),
			ConversationID: cID,
			SenderID:       sender,
			Content:        content,
			State:          domainchat.MessageConfirmed,
			CreatedAt:      createdAt.UTC(),
			UpdatedAt:      createdAt.UTC(),
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteConversation removes the whole partition.
func (l *MessageLog) DeleteConversation(ctx context.Context, conversationID string) error {
	if l.session == nil {
		return errors.New("scylla session not initialized")
	}
	return l.session.
		Query(`DELETE FROM messages WHERE conversation_id = ?`, conversationID).
		WithContext(ctx).
		Consistency(gocql.Quorum).
		Exec()
}
