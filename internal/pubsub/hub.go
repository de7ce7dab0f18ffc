// Package pubsub fans change notifications out to store subscribers.
package pubsub

import (
	"slices"
	"sync"

	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/logger"
)

// Hub holds change listeners. The zero value is ready to use.
type Hub struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(domain.ChangeSet)
}

// Subscribe registers listener and returns a function that removes it.
// The returned function is safe to call more than once.
func (h *Hub) Subscribe(listener func(domain.ChangeSet)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners == nil {
		h.listeners = make(map[int]func(domain.ChangeSet))
	}
	id := h.nextID
	h.nextID++
	h.listeners[id] = listener

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

// Publish calls every listener with changes in subscription order.
// Empty change sets are not delivered. A panicking listener does not
// prevent the others from running.
func (h *Hub) Publish(changes domain.ChangeSet) {
	if len(changes) == 0 {
		return
	}

	h.mu.Lock()
	ids := make([]int, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]func(domain.ChangeSet), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, h.listeners[id])
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		deliver(fn, changes)
	}
}

// Len returns the number of registered listeners.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

func deliver(fn func(domain.ChangeSet), changes domain.ChangeSet) {
	defer logger.Recover("change listener")
	fn(changes)
}
