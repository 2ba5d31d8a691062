package kafka

import (
	"context"
	"log/slog"
	"sync"

	"github.com/IBM/sarama"

	"freebie/internal/chatsync"
)

// Bus carries room-change bells between server instances over a Kafka
// topic. Records are keyed by channel with an empty payload: the signal is
// a bell, not a delta. Each instance consumes with its own group id so
// every instance sees every bell.
type Bus struct {
	producer sarama.SyncProducer
	group    sarama.ConsumerGroup
	topic    string
	logger   *slog.Logger

	mu   sync.RWMutex
	subs map[string]map[int]func()
	next int
}

// NewBus connects the producer and consumer group.
func NewBus(brokers []string, topic, groupID string, logger *slog.Logger) (*Bus, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	groupCfg := sarama.NewConfig()
	groupCfg.Version = sarama.V2_5_0_0
	group, err := sarama.NewConsumerGroup(brokers, groupID, groupCfg)
	if err != nil {
		producer.Close()
		return nil, err
	}
	return &Bus{
		producer: producer,
		group:    group,
		topic:    topic,
		logger:   logger,
		subs:     make(map[string]map[int]func()),
	}, nil
}

// Publish rings the channel across all consuming instances.
func (b *Bus) Publish(ctx context.Context, channel string) error {
	msg := &sarama.ProducerMessage{
		Topic: b.topic,
		Key:   sarama.StringEncoder(channel),
	}
	_, _, err := b.producer.SendMessage(msg)
	return err
}

// Subscribe registers a local callback for a channel.
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

// Run consumes the topic until the context is cancelled, dispatching each
// record's key to the local subscribers.
func (b *Bus) Run(ctx context.Context) error {
	for {
		if err := b.group.Consume(ctx, []string{b.topic}, dispatcher{bus: b}); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close releases the producer and consumer group.
func (b *Bus) Close() error {
	err := b.producer.Close()
	if cerr := b.group.Close(); err == nil {
		err = cerr
	}
	return err
}

func (b *Bus) dispatch(channel string) {
	b.mu.RLock()
	callbacks := make([]func(), 0, len(b.subs[channel]))
	for _, fn := range b.subs[channel] {
		callbacks = append(callbacks, fn)
	}
	b.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
}

type dispatcher struct {
	bus *Bus
}

func (dispatcher) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (dispatcher) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (d dispatcher) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		d.bus.dispatch(string(message.Key))
		sess.MarkMessage(message, "")
	}
	return nil
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
