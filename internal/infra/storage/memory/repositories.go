package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainchat "freebie/internal/domain/chat"
	domainitems "freebie/internal/domain/items"
)

// ItemRepository is an in-memory listing store for dev mode and tests.
type ItemRepository struct {
	mu    sync.RWMutex
	items map[domainitems.ItemID]domainitems.Item
}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{items: make(map[domainitems.ItemID]domainitems.Item)}
}

func (r *ItemRepository) ByID(ctx context.Context, id domainitems.ItemID) (domainitems.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return domainitems.Item{}, domainitems.ErrNotFound
	}
	return item, nil
}

func (r *ItemRepository) Save(ctx context.Context, item domainitems.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id domainitems.ItemID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainitems.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// Search evaluates the filter predicates directly, newest listings first.
func (r *ItemRepository) Search(ctx context.Context, params domainitems.SearchParams) ([]domainitems.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]domainitems.Item, 0)
	for _, item := range r.items {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if params.Matches(item) {
			matches = append(matches, item)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// RoomRepository is an in-memory conversation store.
type RoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]domainchat.Conversation
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{rooms: make(map[string]domainchat.Conversation)}
}

func (r *RoomRepository) ByID(ctx context.Context, id string) (domainchat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return domainchat.Conversation{}, domainchat.ErrConversationNotFound
	}
	return room, nil
}

func (r *RoomRepository) FindByTriple(ctx context.Context, itemID, sellerID, buyerID string) (domainchat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, room := range r.rooms {
		if room.ItemID == itemID && room.SellerID == sellerID && room.BuyerID == buyerID {
			return room, nil
		}
	}
	return domainchat.Conversation{}, domainchat.ErrConversationNotFound
}

func (r *RoomRepository) ForUser(ctx context.Context, userID string) ([]domainchat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainchat.Conversation, 0)
	for _, room := range r.rooms {
		if room.Involves(userID) {
			out = append(out, room)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *RoomRepository) Save(ctx context.Context, room domainchat.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = room
	return nil
}

func (r *RoomRepository) Touch(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return domainchat.ErrConversationNotFound
	}
	room.UpdatedAt = at.UTC()
	r.rooms[id] = room
	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return domainchat.ErrConversationNotFound
	}
	delete(r.rooms, id)
	return nil
}

// MessageLog is an in-memory append-only message store.
type MessageLog struct {
	mu     sync.RWMutex
	byRoom map[string][]domainchat.Message
}

func NewMessageLog() *MessageLog {
	return &MessageLog{byRoom: make(map[string][]domainchat.Message)}
}

// Add assigns the permanent identifier and timestamp, as the backend would.
func (l *MessageLog) Add(ctx context.Context, conversationID, senderID, content string, at time.Time) (domainchat.Message, error) {
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()
	message := domainchat.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		State:          domainchat.MessageConfirmed,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byRoom[conversationID] = append(l.byRoom[conversationID], message)
	return message, nil
}

// List returns up to limit messages, newest first.
func (l *MessageLog) List(ctx context.Context, conversationID string, limit int) ([]domainchat.Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stored := l.byRoom[conversationID]
	out := make([]domainchat.Message, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *MessageLog) DeleteConversation(ctx context.Context, conversationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.byRoom, conversationID)
	return nil
}
