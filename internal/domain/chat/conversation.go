package chat

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrConversationNotFound is returned when a room does not exist.
	ErrConversationNotFound = errors.New("chat: conversation not found")
	// ErrParticipantsRequired is returned when seller or buyer is missing.
	ErrParticipantsRequired = errors.New("chat: seller and buyer are required")
	// ErrSelfConversation is returned when both participants are the same user.
	ErrSelfConversation = errors.New("chat: cannot open a conversation with yourself")
)

// Conversation is a buyer/seller thread anchored to one item listing.
// At most one conversation exists per (item, seller, buyer) triple.
type Conversation struct {
	ID        string
	ItemID    string
	SellerID  string
	BuyerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewConversation validates participants and builds a thread.
func NewConversation(id, itemID, sellerID, buyerID string, at time.Time) (Conversation, error) {
	sellerID = strings.TrimSpace(sellerID)
	buyerID = strings.TrimSpace(buyerID)
	if sellerID == "" || buyerID == "" {
		return Conversation{}, ErrParticipantsRequired
	}
	if sellerID == buyerID {
		return Conversation{}, ErrSelfConversation
	}
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()
	return Conversation{
		ID:        id,
		ItemID:    strings.TrimSpace(itemID),
		SellerID:  sellerID,
		BuyerID:   buyerID,
		CreatedAt: at,
		UpdatedAt: at,
	}, nil
}

// Involves reports whether the user participates in the thread.
func (c Conversation) Involves(userID string) bool {
	return userID != "" && (c.SellerID == userID || c.BuyerID == userID)
}

// Channel returns the notification channel name scoped to this thread.
// Any mutation of the room or its messages rings this channel.
func (c Conversation) Channel() string {
	return Channel(c.ID)
}

// Channel builds the room-level notification channel name for an id.
func Channel(conversationID string) string {
	return "chatrooms." + conversationID
}
