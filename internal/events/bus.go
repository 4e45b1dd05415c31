package events

import (
	"sync"
	"time"

	"github.com/campuscanteen/canteen-api/internal/models"
)

// Topics published on the bus.
const (
	TopicCartChanged = "cart.changed"
	TopicOrderStatus = "order.status"
)

// Event is a notification about a cart or order change. In-process
// subscribers get immediate delivery; HTTP clients poll instead, with a
// documented 10s staleness bound.
type Event struct {
	Topic     string
	SessionID string
	OrderID   string
	Status    models.Status
	At        time.Time
}

// Bus is a small in-process publish/subscribe hub. Delivery is
// best-effort: a subscriber that stops draining its channel loses
// events rather than blocking publishers.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string][]chan Event),
	}
}

// Subscribe registers interest in a topic. The returned cancel function
// removes the subscription and closes the channel.
func (b *Bus) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.subs[topic]
		for i, c := range subs {
			if c == ch {
				b.subs[topic] = append(subs[:i], subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of its topic without
// blocking.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[e.Topic] {
		select {
		case ch <- e:
		default:
		}
	}
}
