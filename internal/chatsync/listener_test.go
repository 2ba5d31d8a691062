package chatsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	channel string
	notify  func()
	err     error
	closed  int
}

func (s *fakeSubscriber) Subscribe(channel string, notify func()) (Subscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.channel = channel
	s.notify = notify
	return fakeSubscription{subscriber: s}, nil
}

type fakeSubscription struct {
	subscriber *fakeSubscriber
}

func (s fakeSubscription) Close() error {
	s.subscriber.closed++
	return nil
}

func TestAttachFetchesInitialStateAndSubscribes(t *testing.T) {
	backend := &fakeBackend{}
	_, err := backend.Send(context.Background(), "room-1", "seller-1", "welcome")
	require.NoError(t, err)

	store := NewStore("")
	sub := &fakeSubscriber{}
	listener := NewListener(store, backend, sub, nil)

	require.NoError(t, listener.Attach(context.Background(), "room-1"))
	assert.Equal(t, "chatrooms.room-1", sub.channel)
	require.Equal(t, 1, store.Len())
	assert.Equal(t, "welcome", store.Snapshot()[0].Content)
}

func TestNotificationTriggersRefetch(t *testing.T) {
	backend := &fakeBackend{}
	store := NewStore("")
	sub := &fakeSubscriber{}
	listener := NewListener(store, backend, sub, nil)
	require.NoError(t, listener.Attach(context.Background(), "room-1"))
	require.Zero(t, store.Len())

	// another participant writes, then the bell rings
	_, err := backend.Send(context.Background(), "room-1", "seller-1", "hi")
	require.NoError(t, err)
	sub.notify()

	require.Equal(t, 1, store.Len())
	assert.Equal(t, "hi", store.Snapshot()[0].Content)
}

func TestDuplicateNotificationsConverge(t *testing.T) {
	backend := &fakeBackend{}
	store := NewStore("")
	sub := &fakeSubscriber{}
	listener := NewListener(store, backend, sub, nil)
	require.NoError(t, listener.Attach(context.Background(), "room-1"))

	_, err := backend.Send(context.Background(), "room-1", "seller-1", "hi")
	require.NoError(t, err)
	sub.notify()
	sub.notify()
	sub.notify()

	assert.Equal(t, 1, store.Len())
}

func TestAttachTwiceFails(t *testing.T) {
	store := NewStore("")
	listener := NewListener(store, &fakeBackend{}, &fakeSubscriber{}, nil)
	require.NoError(t, listener.Attach(context.Background(), "room-1"))
	assert.ErrorIs(t, listener.Attach(context.Background(), "room-1"), ErrAlreadyAttached)
}

func TestDetachClosesSubscription(t *testing.T) {
	store := NewStore("")
	sub := &fakeSubscriber{}
	listener := NewListener(store, &fakeBackend{}, sub, nil)
	require.NoError(t, listener.Attach(context.Background(), "room-1"))

	require.NoError(t, listener.Detach())
	assert.Equal(t, 1, sub.closed)

	// detaching an idle listener is a no-op
	require.NoError(t, listener.Detach())
	assert.Equal(t, 1, sub.closed)
}

func TestRefreshFailureKeepsLastKnownGoodState(t *testing.T) {
	backend := &fakeBackend{}
	_, err := backend.Send(context.Background(), "room-1", "seller-1", "hi")
	require.NoError(t, err)

	store := NewStore("")
	sub := &fakeSubscriber{}
	listener := NewListener(store, backend, sub, nil)
	require.NoError(t, listener.Attach(context.Background(), "room-1"))
	require.Equal(t, 1, store.Len())

	backend.mu.Lock()
	backend.fetchErr = errors.New("timeout")
	backend.mu.Unlock()
	sub.notify()
	assert.Equal(t, 1, store.Len())

	// the next notification recovers
	backend.mu.Lock()
	backend.fetchErr = nil
	backend.mu.Unlock()
	_, err = backend.Send(context.Background(), "room-1", "buyer-1", "still there?")
	require.NoError(t, err)
	sub.notify()
	assert.Equal(t, 2, store.Len())
}

func TestAttachSurfacesSubscribeError(t *testing.T) {
	store := NewStore("")
	sub := &fakeSubscriber{err: errors.New("broker unavailable")}
	listener := NewListener(store, &fakeBackend{}, sub, nil)
	require.Error(t, listener.Attach(context.Background(), "room-1"))

	// a later attach with a working subscriber succeeds
	working := &fakeSubscriber{}
	listener = NewListener(store, &fakeBackend{}, working, nil)
	require.NoError(t, listener.Attach(context.Background(), "room-1"))
}
