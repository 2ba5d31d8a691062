package dto

import (
	"time"

	domainchat "freebie/internal/domain/chat"
)

// Conversation describes a buyer/seller thread.
type Conversation struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id,omitempty"`
	SellerID  string    `json:"seller_id"`
	BuyerID   string    `json:"buyer_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversation maps the domain entity.
func NewConversation(c domainchat.Conversation) Conversation {
	return Conversation{
		ID:        c.ID,
		ItemID:    c.ItemID,
		SellerID:  c.SellerID,
		BuyerID:   c.BuyerID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ConversationList is a collection payload.
type ConversationList struct {
	Items []Conversation `json:"items"`
}

// ChatMessage contains a single message payload.
type ChatMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewChatMessage maps the domain entity.
func NewChatMessage(m domainchat.Message) ChatMessage {
	return ChatMessage{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

// ChatMessageList is a message collection payload, newest first.
type ChatMessageList struct {
	Items []ChatMessage `json:"items"`
}
