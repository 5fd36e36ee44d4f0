package rewards

import (
	"sync"

	"github.com/gymkeyapp/gymkey-server/internal/ledger"
)

// Manager hands out one redemption flow per user
type Manager struct {
	keys *ledger.Hub

	mu    sync.Mutex
	flows map[string]*Flow
}

// NewManager creates a new redemption manager on top of the ledger hub
func NewManager(keys *ledger.Hub) *Manager {
	return &Manager{
		keys:  keys,
		flows: make(map[string]*Flow),
	}
}

// FlowFor returns the redemption flow for the given user, creating it on
// first use
func (m *Manager) FlowFor(userID string) *Flow {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.flows[userID]
	if !ok {
		f = NewFlow(m.keys.ForUser(userID))
		m.flows[userID] = f
	}

	return f
}

// Close tears down all flows
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, f := range m.flows {
		f.Close()
		delete(m.flows, userID)
	}
}
