package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxContentLength caps message content in runes.
const MaxContentLength = 1000

// TempIDPrefix marks locally minted identifiers that have not been
// confirmed by the backend yet.
const TempIDPrefix = "temp-"

var (
	// ErrEmptyContent is returned for empty or whitespace-only message text.
	ErrEmptyContent = errors.New("chat: message content is empty")
	// ErrContentTooLong is returned when message text exceeds MaxContentLength.
	ErrContentTooLong = errors.New("chat: message content exceeds limit")
	// ErrMessageNotFound is returned when a message cannot be located.
	ErrMessageNotFound = errors.New("chat: message not found")
)

// MessageState tracks the local lifecycle of a message.
type MessageState string

const (
	// MessagePending is a locally appended message awaiting confirmation.
	MessagePending MessageState = "pending"
	// MessageConfirmed is a message the backend has assigned an identifier to.
	MessageConfirmed MessageState = "confirmed"
)

// Message is one chat utterance inside a conversation.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	State          MessageState
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Pending reports whether the message still carries a temporary identifier.
func (m Message) Pending() bool {
	return m.State == MessagePending || strings.HasPrefix(m.ID, TempIDPrefix)
}

// ValidateContent trims the text and enforces the content rules shared by
// the optimistic send path and the server-side write path.
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrEmptyContent
	}
	if len([]rune(trimmed)) > MaxContentLength {
		return "", ErrContentTooLong
	}
	return trimmed, nil
}

// NewPending builds a locally visible message with a temporary identifier.
// Content must already be validated.
func NewPending(conversationID, senderID, content string, at time.Time) Message {
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()
	return Message{
		ID:             TempIDPrefix + uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		State:          MessagePending,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}
