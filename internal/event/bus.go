package event

import "sync"

// Handler is a function that handles an event.
type Handler func(Event)

// Bus delivers events to the handlers subscribed to their type.
// Handlers run on the publisher's goroutine in registration order, so a
// subscriber sees events in exactly the order the scheduler produced them.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers handler for one event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish calls every handler subscribed to the event's type.
// Publishing on a nil Bus is a no-op.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := b.handlers[e.EventType()]
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
