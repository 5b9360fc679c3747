// Package live fans out "something changed" notifications to live queries.
//
// Reads stay pure functions of store state. A subscriber is told only that
// the data may have changed; it re-runs its own read to find out what the
// new result is. Notifications coalesce: each subscriber has a one-slot
// buffer, so ten mutations in a burst wake a slow subscriber once, and
// Publish never blocks a mutation on a slow reader.
package live

import "sync"

// Hub is safe for concurrent use. The zero value is not usable; call NewHub.
type Hub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan struct{}]struct{})}
}

// Subscribe registers a listener. The returned cancel func removes it and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish wakes every subscriber.
func (h *Hub) Publish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
			// already pending
		}
	}
}

// Subscribers returns the current listener count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
