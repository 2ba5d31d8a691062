package chatsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freebie/internal/domain/chat"
)

// fakeBackend records sends and serves fetches from an in-memory log.
type fakeBackend struct {
	mu       sync.Mutex
	log      []chat.Message
	sendErr  error
	fetchErr error
	sends    int
	fetches  int
}

func (b *fakeBackend) Send(ctx context.Context, conversationID, senderID, content string) (chat.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sends++
	if b.sendErr != nil {
		return chat.Message{}, b.sendErr
	}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(len(b.log)) * time.Second)
	message := chat.Message{
		ID:             "srv-" + content,
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		State:          chat.MessageConfirmed,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	b.log = append(b.log, message)
	return message, nil
}

func (b *fakeBackend) Fetch(ctx context.Context, conversationID string, limit int) ([]chat.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	out := make([]chat.Message, 0, len(b.log))
	for i := len(b.log) - 1; i >= 0; i-- { // newest first
		if b.log[i].ConversationID != conversationID {
			continue
		}
		out = append(out, b.log[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func TestSendHappyPathConfirmsViaReconcile(t *testing.T) {
	backend := &fakeBackend{}
	store := NewStore("room-1")
	session := NewSession(store, backend, backend, "buyer-1", nil)

	session.SetDraft("  hello there  ")
	require.NoError(t, session.Send(context.Background()))

	assert.Empty(t, session.Draft())
	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "srv-hello there", snapshot[0].ID)
	assert.Equal(t, "hello there", snapshot[0].Content)
	assert.False(t, snapshot[0].Pending())
	assert.Equal(t, 1, backend.fetches)
}

func TestSendFailureRollsBackAndRestoresDraft(t *testing.T) {
	backend := &fakeBackend{sendErr: errors.New("backend down")}
	store := NewStore("room-1")
	session := NewSession(store, backend, backend, "buyer-1", nil)

	session.SetDraft("hello")
	err := session.Send(context.Background())
	require.Error(t, err)

	assert.Zero(t, store.Len())
	assert.Equal(t, "hello", session.Draft())
	// the failed send never reconciles
	assert.Zero(t, backend.fetches)
}

func TestSendValidationLeavesStateUntouched(t *testing.T) {
	backend := &fakeBackend{}
	store := NewStore("room-1")
	session := NewSession(store, backend, backend, "buyer-1", nil)

	session.SetDraft("   ")
	err := session.Send(context.Background())
	require.ErrorIs(t, err, chat.ErrEmptyContent)
	assert.Equal(t, "   ", session.Draft())
	assert.Zero(t, store.Len())
	assert.Zero(t, backend.sends)
}

func TestSendRejectsOversizedDraft(t *testing.T) {
	backend := &fakeBackend{}
	store := NewStore("room-1")
	session := NewSession(store, backend, backend, "buyer-1", nil)

	long := make([]rune, chat.MaxContentLength+1)
	for i := range long {
		long[i] = 'x'
	}
	session.SetDraft(string(long))
	require.ErrorIs(t, session.Send(context.Background()), chat.ErrContentTooLong)
	assert.Zero(t, backend.sends)
}

func TestSendShowsPendingEntryBeforeConfirmation(t *testing.T) {
	store := NewStore("room-1")
	backend := &fakeBackend{}
	observed := make(chan int, 1)
	sender := senderFunc(func(ctx context.Context, conversationID, senderID, content string) (chat.Message, error) {
		observed <- store.Len()
		return backend.Send(ctx, conversationID, senderID, content)
	})
	session := NewSession(store, sender, backend, "buyer-1", nil)

	session.SetDraft("hello")
	require.NoError(t, session.Send(context.Background()))
	assert.Equal(t, 1, <-observed)
}

func TestConsecutiveSendsAllSurvive(t *testing.T) {
	backend := &fakeBackend{}
	store := NewStore("room-1")
	session := NewSession(store, backend, backend, "buyer-1", nil)

	for _, text := range []string{"one", "two", "three"} {
		session.SetDraft(text)
		require.NoError(t, session.Send(context.Background()))
	}

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "one", snapshot[0].Content)
	assert.Equal(t, "two", snapshot[1].Content)
	assert.Equal(t, "three", snapshot[2].Content)
	for _, m := range snapshot {
		assert.False(t, m.Pending())
	}
}

type senderFunc func(ctx context.Context, conversationID, senderID, content string) (chat.Message, error)

func (f senderFunc) Send(ctx context.Context, conversationID, senderID, content string) (chat.Message, error) {
	return f(ctx, conversationID, senderID, content)
}
