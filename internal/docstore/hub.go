package docstore

import (
	"sync"
)

// hub fans document changes out to per-document watchers. Watcher channels
// hold a single slot: a notify against a full channel replaces the pending
// value, so a slow consumer always sees the most recent state rather than a
// queue of intermediates.
type hub struct {
	mu       sync.Mutex
	watchers map[string]map[int]chan Document
	nextID   int
}

func newHub() *hub {
	return &hub{
		watchers: make(map[string]map[int]chan Document),
	}
}

func watchKey(collection, id string) string {
	return collection + "/" + id
}

func (h *hub) watch(collection, id string) (<-chan Document, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := watchKey(collection, id)
	if h.watchers[key] == nil {
		h.watchers[key] = make(map[int]chan Document)
	}

	watcherID := h.nextID
	h.nextID++

	ch := make(chan Document, 1)
	h.watchers[key][watcherID] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if ch, ok := h.watchers[key][watcherID]; ok {
			delete(h.watchers[key], watcherID)
			close(ch)
		}
	}

	return ch, cancel
}

func (h *hub) notify(collection, id string, doc Document) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.watchers[watchKey(collection, id)] {
		select {
		case ch <- doc:
		default:
			// Drop the stale pending value and replace it
			select {
			case <-ch:
			default:
			}
			ch <- doc
		}
	}
}
