package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"freebie/internal/app/dto"
	chatsvc "freebie/internal/app/services/chat"
	itemsvc "freebie/internal/app/services/items"
	domainchat "freebie/internal/domain/chat"
	domainitems "freebie/internal/domain/items"
)

// ChatHTTP exposes conversation endpoints.
type ChatHTTP interface {
	ListMine(c *gin.Context)
	StartForItem(c *gin.Context)
	ListMessages(c *gin.Context)
	SendMessage(c *gin.Context)
	Touch(c *gin.Context)
	Delete(c *gin.Context)
}

// ChatHandler bridges HTTP with the chat service.
type ChatHandler struct {
	Chat   *chatsvc.Service
	Items  *itemsvc.Service
	Logger *slog.Logger
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// ListMine returns the caller's threads, most recently active first.
func (h ChatHandler) ListMine(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	rooms, err := h.Chat.RoomsForUser(c.Request.Context(), p.ID)
	if err != nil {
		h.logError("conversation list failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	list := dto.ConversationList{Items: make([]dto.Conversation, 0, len(rooms))}
	for _, room := range rooms {
		list.Items = append(list.Items, dto.NewConversation(room))
	}
	c.JSON(http.StatusOK, list)
}

// StartForItem opens (or returns) the thread between the caller and the
// item's owner. Owners cannot open a thread with themselves.
func (h ChatHandler) StartForItem(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	itemID := domainitems.ItemID(c.Param("id"))
	item, err := h.Items.ByID(c.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, domainitems.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		h.logError("item load failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	room, err := h.Chat.GetOrCreateRoom(c.Request.Context(), string(item.ID), item.OwnerID, p.ID)
	if err != nil {
		if errors.Is(err, domainchat.ErrSelfConversation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start a chat with yourself"})
			return
		}
		h.logError("conversation create failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.NewConversation(room))
}

// ListMessages returns a page of messages, newest first.
func (h ChatHandler) ListMessages(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	room, err := h.Chat.RoomByID(c.Request.Context(), id)
	if err != nil {
		h.respondRoomError(c, err)
		return
	}
	if !room.Involves(p.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	messages, err := h.Chat.MessagePage(c.Request.Context(), id, limit)
	if err != nil {
		h.respondRoomError(c, err)
		return
	}
	list := dto.ChatMessageList{Items: make([]dto.ChatMessage, 0, len(messages))}
	for _, m := range messages {
		list.Items = append(list.Items, dto.NewChatMessage(m))
	}
	c.JSON(http.StatusOK, list)
}

// SendMessage appends to the thread and rings the room channel.
func (h ChatHandler) SendMessage(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	message, err := h.Chat.SendMessage(c.Request.Context(), c.Param("id"), p.ID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, domainchat.ErrEmptyContent),
			errors.Is(err, domainchat.ErrContentTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.respondRoomError(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, dto.NewChatMessage(message))
}

// Touch bumps the thread's activity timestamp and rings its channel.
func (h ChatHandler) Touch(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	room, err := h.Chat.RoomByID(c.Request.Context(), id)
	if err != nil {
		h.respondRoomError(c, err)
		return
	}
	if !room.Involves(p.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}
	if err := h.Chat.TouchRoom(c.Request.Context(), id); err != nil {
		h.respondRoomError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes the thread and all of its messages.
func (h ChatHandler) Delete(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Chat.DeleteRoom(c.Request.Context(), c.Param("id"), p.ID); err != nil {
		h.respondRoomError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h ChatHandler) respondRoomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainchat.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case errors.Is(err, chatsvc.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
	default:
		h.logError("chat request failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h ChatHandler) logError(msg string, err error) {
	if h.Logger != nil {
		h.Logger.Error(msg, "error", err)
	}
}

var _ ChatHTTP = (*ChatHandler)(nil)
