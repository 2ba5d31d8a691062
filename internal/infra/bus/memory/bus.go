package memory

import (
	"context"
	"sync"

	"freebie/internal/chatsync"
)

// Bus is an in-process room-change bell: publishers ring a channel string,
// subscribers registered on that channel get a payload-free callback.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[int]func()
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]func())}
}

// Publish invokes every callback registered on the channel. Callbacks run
// synchronously on the caller's goroutine.
func (b *Bus) Publish(ctx context.Context, channel string) error {
	b.mu.RLock()
	callbacks := make([]func(), 0, len(b.subs[channel]))
	for _, fn := range b.subs[channel] {
		callbacks = append(callbacks, fn)
	}
	b.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
	return nil
}

// Subscribe registers a callback and returns a handle that removes it.
func (b *Bus) Subscribe(channel string, notify func()) (chatsync.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int]func())
	}
	id := b.next
	b.next++
	b.subs[channel][id] = notify
	return &subscription{bus: b, channel: channel, id: id}, nil
}

type subscription struct {
	bus     *Bus
	channel string
	id      int
}

func (s *subscription) Close() error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if subs, ok := s.bus.subs[s.channel]; ok {
		delete(subs, s.id)
		if len(subs) == 0 {
			delete(s.bus.subs, s.channel)
		}
	}
	return nil
}
