// Package realtime carries document change notifications from writers to the
// subscriptions that need to re-read a snapshot.
package realtime

import (
	"path"
	"sync"
)

// Change announces that the document at Path was written or deleted.
type Change struct {
	Path string `json:"path"`
}

// Hub dispatches changes to local subscribers registered by path.
type Hub struct {
	mu   sync.RWMutex
	next uint64
	subs map[string]map[uint64]func()
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]func())}
}

// Subscribe registers notify for changes to p. A document path fires for writes to
// that document; a collection path fires for writes to any document directly in it.
// notify runs on the dispatching goroutine and must not block.
func (h *Hub) Subscribe(p string, notify func()) (cancel func()) {
	h.mu.Lock()
	h.next++
	id := h.next
	if h.subs[p] == nil {
		h.subs[p] = make(map[uint64]func())
	}
	h.subs[p][id] = notify
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[p], id)
			if len(h.subs[p]) == 0 {
				delete(h.subs, p)
			}
		})
	}
}

// Dispatch notifies subscribers of the changed document and of its parent collection.
func (h *Hub) Dispatch(c Change) {
	h.mu.RLock()
	var targets []func()
	for _, key := range []string{c.Path, path.Dir(c.Path)} {
		for _, fn := range h.subs[key] {
			targets = append(targets, fn)
		}
	}
	h.mu.RUnlock()

	for _, fn := range targets {
		fn()
	}
}

// Subscribers reports how many subscriptions are registered for p.
func (h *Hub) Subscribers(p string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[p])
}
