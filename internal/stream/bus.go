package stream

import (
	"sync"

	"github.com/shettydev/mukti-tui/internal/constants"
)

// EventBus fans live conversation events out to whoever is watching: the
// TUI's event loop, and in offline mode the session driving a provider
// turn. Both session backends publish through the same bus so the UI
// never knows which one it is talking to.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	bufferSize  int
}

// NewEventBus creates a bus whose subscriber channels buffer at least
// constants.MinEventBusBufferSize events.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize < constants.MinEventBusBufferSize {
		bufferSize = constants.MinEventBusBufferSize
	}
	return &EventBus{
		bufferSize: bufferSize,
	}
}

// Subscribe registers a new watcher and returns its channel. A watcher
// that stops draining its channel loses events rather than stalling the
// publisher.
func (b *EventBus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes a watcher and closes its channel.
func (b *EventBus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			close(sub)
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every subscriber without blocking. A
// full subscriber buffer drops the event for that subscriber only.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// subscriber buffer full, drop
		}
	}
}

// Close closes every subscriber channel. Publish must not be called
// after Close.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
