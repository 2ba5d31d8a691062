package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainchat "freebie/internal/domain/chat"
)

// ErrNotParticipant is returned when a user acts on a thread they are not in.
var ErrNotParticipant = errors.New("chat: user is not a participant")

// RoomRepository persists conversation rows.
type RoomRepository interface {
	ByID(ctx context.Context, id string) (domainchat.Conversation, error)
	FindByTriple(ctx context.Context, itemID, sellerID, buyerID string) (domainchat.Conversation, error)
	ForUser(ctx context.Context, userID string) ([]domainchat.Conversation, error)
	Save(ctx context.Context, conversation domainchat.Conversation) error
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// MessageLog is the append-only message store. List returns newest first.
type MessageLog interface {
	Add(ctx context.Context, conversationID, senderID, content string, at time.Time) (domainchat.Message, error)
	List(ctx context.Context, conversationID string, limit int) ([]domainchat.Message, error)
	DeleteConversation(ctx context.Context, conversationID string) error
}

// Notifier rings a room-level channel. The signal carries no payload.
type Notifier interface {
	Publish(ctx context.Context, channel string) error
}

// Service implements the conversation operations behind the HTTP API and
// the sync core's backend contract.
type Service struct {
	Rooms    RoomRepository
	Messages MessageLog
	Notifier Notifier
	Logger   *slog.Logger
}

// MaxPageSize caps a message page.
const MaxPageSize = 100

// GetOrCreateRoom returns the thread for the (item, seller, buyer) triple,
// creating it on first contact. Creation is idempotent: an existing triple
// returns the existing row.
func (s *Service) GetOrCreateRoom(ctx context.Context, itemID, sellerID, buyerID string) (domainchat.Conversation, error) {
	candidate, err := domainchat.NewConversation(uuid.NewString(), itemID, sellerID, buyerID, time.Now())
	if err != nil {
		return domainchat.Conversation{}, err
	}
	existing, err := s.Rooms.FindByTriple(ctx, candidate.ItemID, candidate.SellerID, candidate.BuyerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domainchat.ErrConversationNotFound) {
		return domainchat.Conversation{}, fmt.Errorf("lookup conversation: %w", err)
	}
	if err := s.Rooms.Save(ctx, candidate); err != nil {
		return domainchat.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("conversation created", "conversation_id", candidate.ID, "item_id", candidate.ItemID)
	}
	return candidate, nil
}

// RoomByID loads one thread.
func (s *Service) RoomByID(ctx context.Context, id string) (domainchat.Conversation, error) {
	return s.Rooms.ByID(ctx, id)
}

// RoomsForUser lists threads where the user is seller or buyer.
func (s *Service) RoomsForUser(ctx context.Context, userID string) ([]domainchat.Conversation, error) {
	return s.Rooms.ForUser(ctx, userID)
}

// SendMessage validates and persists a message, then bumps the room row and
// rings its channel so subscribed clients refetch. The bump and the bell are
// best-effort: the message is durable once Add returns.
func (s *Service) SendMessage(ctx context.Context, conversationID, senderID, content string) (domainchat.Message, error) {
	trimmed, err := domainchat.ValidateContent(content)
	if err != nil {
		return domainchat.Message{}, err
	}
	room, err := s.Rooms.ByID(ctx, conversationID)
	if err != nil {
		return domainchat.Message{}, err
	}
	if !room.Involves(senderID) {
		return domainchat.Message{}, ErrNotParticipant
	}
	message, err := s.Messages.Add(ctx, room.ID, senderID, trimmed, time.Now())
	if err != nil {
		return domainchat.Message{}, fmt.Errorf("save message: %w", err)
	}
	if err := s.Rooms.Touch(ctx, room.ID, message.CreatedAt); err != nil && s.Logger != nil {
		s.Logger.Warn("room bump failed", "conversation_id", room.ID, "error", err)
	}
	s.ring(ctx, room.ID)
	return message, nil
}

// MessagePage returns up to limit messages, newest first. Zero or oversized
// limits clamp to MaxPageSize.
func (s *Service) MessagePage(ctx context.Context, conversationID string, limit int) ([]domainchat.Message, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	if _, err := s.Rooms.ByID(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.Messages.List(ctx, conversationID, limit)
}

// DeleteRoom removes a thread and its messages. The cascade is explicit:
// orphaned message rows are not left behind.
func (s *Service) DeleteRoom(ctx context.Context, conversationID, userID string) error {
	room, err := s.Rooms.ByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !room.Involves(userID) {
		return ErrNotParticipant
	}
	if err := s.Messages.DeleteConversation(ctx, room.ID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if err := s.Rooms.Delete(ctx, room.ID); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// DeleteForUser removes every thread the user participates in, cascading
// to messages. Used by the account deletion pipeline.
func (s *Service) DeleteForUser(ctx context.Context, userID string) error {
	rooms, err := s.Rooms.ForUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, room := range rooms {
		if err := s.Messages.DeleteConversation(ctx, room.ID); err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := s.Rooms.Delete(ctx, room.ID); err != nil {
			return fmt.Errorf("delete conversation: %w", err)
		}
	}
	return nil
}

// TouchRoom bumps the room row and rings its channel without writing a
// message. Subscribers treat it like any other change signal.
func (s *Service) TouchRoom(ctx context.Context, conversationID string) error {
	room, err := s.Rooms.ByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if err := s.Rooms.Touch(ctx, room.ID, time.Now()); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	s.ring(ctx, room.ID)
	return nil
}

func (s *Service) ring(ctx context.Context, conversationID string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Publish(ctx, domainchat.Channel(conversationID)); err != nil && s.Logger != nil {
		s.Logger.Warn("room notification failed", "conversation_id", conversationID, "error", err)
	}
}
