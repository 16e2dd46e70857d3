// Package eventbus is a minimal in-process pub/sub used for application
// signals such as network changes. Handlers run synchronously on the
// publishing goroutine; subscribers own their unsubscribe handle.
package eventbus

import "sync"

// SignalNetworkChanged fires when the active network selection changes.
const SignalNetworkChanged = "network_changed"

type Handler func(payload any)

type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[string]map[int]Handler)}
}

// Subscribe registers a handler for a signal and returns an unsubscribe
// function. Unsubscribing twice is a no-op.
func (b *Bus) Subscribe(signal string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[signal] == nil {
		b.handlers[signal] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[signal][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[signal], id)
	}
}

// Publish invokes every handler subscribed to the signal.
func (b *Bus) Publish(signal string, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[signal]))
	for _, h := range b.handlers[signal] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}
