package event

import (
	"sync"

	"github.com/google/uuid"

	"spaceship-manager/internal/model"
)

type Bus interface {
	Publish(e SpaceshipEvent) error
	Subscribe() (<-chan SpaceshipEvent, func())
}

// InMemoryBus fans events out to all subscribers. Delivery to a subscriber is
// non-blocking: a full channel drops the event for that subscriber only, so a
// slow consumer never stalls the write path.
type InMemoryBus struct {
	mu          sync.RWMutex
	closed      bool
	subscribers map[string]chan SpaceshipEvent
}

func NewBus() *InMemoryBus {
	return &InMemoryBus{
		subscribers: make(map[string]chan SpaceshipEvent),
	}
}

func (b *InMemoryBus) Publish(e SpaceshipEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return model.ErrBusClosed
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			// Subscriber buffer full; drop for this subscriber only.
		}
	}
	return nil
}

func (b *InMemoryBus) Subscribe() (<-chan SpaceshipEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan SpaceshipEvent, 100) // Buffer to handle bursts
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, exists := b.subscribers[id]; exists {
			close(ch)
			delete(b.subscribers, id)
		}
	}

	return ch, unsubscribe
}

// Close rejects further publishes and closes all subscriber channels.
func (b *InMemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
