package events

import (
	"context"
	"strings"
	"sync"
)

const defaultBufferSize = 100

// BusEvent is a message delivered to bus subscribers.
type BusEvent struct {
	Topic   string
	Payload Event
}

// Subscription represents an active subscription.
type Subscription struct {
	id     int
	prefix string
	ch     chan BusEvent
}

// Ch returns the channel to receive events on.
func (s *Subscription) Ch() <-chan BusEvent {
	return s.ch
}

// Bus is a simple in-process pub/sub sink with topic prefix matching. Slow
// consumers miss events rather than blocking publishers, which keeps emission
// at-least-once from the producer's perspective without coupling request
// latency to consumers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*Subscription
	nextID int
}

// NewBus creates a new Bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]*Subscription),
	}
}

// Subscribe creates a subscription for events matching the given topic
// prefix. An empty prefix matches all topics. The returned channel has a
// buffer of 100 events; sends to a full channel are dropped.
func (b *Bus) Subscribe(topicPrefix string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		prefix: topicPrefix,
		ch:     make(chan BusEvent, defaultBufferSize),
	}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		close(sub.ch)
	}
}

// Publish implements Sink. It fans the event out to every matching
// subscription without blocking.
func (b *Bus) Publish(ctx context.Context, topic string, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.prefix != "" && !strings.HasPrefix(topic, sub.prefix) {
			continue
		}
		select {
		case sub.ch <- BusEvent{Topic: topic, Payload: event}:
		default:
		}
	}
	return nil
}

var _ Sink = (*Bus)(nil)
var _ Sink = (*LogSink)(nil)
var _ Sink = Discard{}
