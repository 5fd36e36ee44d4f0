package ledger

import (
	"sync"

	"github.com/gymkeyapp/gymkey-server/internal/docstore"
)

// Hub hands out one live balance mirror per user
type Hub struct {
	store docstore.Store

	mu      sync.Mutex
	ledgers map[string]*Ledger
}

// NewHub creates a new ledger hub on top of the document store
func NewHub(store docstore.Store) *Hub {
	return &Hub{
		store:   store,
		ledgers: make(map[string]*Ledger),
	}
}

// ForUser returns the ledger mirror for the given user, starting it on
// first use
func (h *Hub) ForUser(userID string) *Ledger {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.ledgers[userID]
	if !ok {
		l = newLedger(h.store, userID)
		h.ledgers[userID] = l
	}

	return l
}

// Close tears down all mirrors
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, l := range h.ledgers {
		l.Close()
		delete(h.ledgers, userID)
	}
}
