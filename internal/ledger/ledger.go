package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gymkeyapp/gymkey-server/internal/docstore"
)

const (
	usersCollection = "users"
	keysField       = "keys"
)

// ErrInvalidAmount is returned when a mutation amount is not positive
var ErrInvalidAmount = errors.New("amount must be positive")

// Ledger mirrors one user's key balance from the document store. Mutations
// are unconditional additive increments applied store-side, so concurrent
// writers cannot lose updates; the authoritative balance always flows back
// through the store subscription, which means a caller may observe its own
// write stale for one round trip. No floor is enforced: a debit can drive
// the stored balance negative.
type Ledger struct {
	store  docstore.Store
	userID string

	mu       sync.Mutex
	balance  int64
	watchers map[int]chan int64
	nextID   int
	closed   bool
	cancel   func()
}

func newLedger(store docstore.Store, userID string) *Ledger {
	l := &Ledger{
		store:    store,
		userID:   userID,
		watchers: make(map[int]chan int64),
	}

	// Register the subscription before the seed read: a write landing in
	// between is then delivered through the channel instead of lost. A
	// missing document reads as 0.
	updates, cancel := store.Watch(usersCollection, userID)
	l.cancel = cancel

	if doc, err := store.Get(context.Background(), usersCollection, userID); err == nil {
		l.balance = doc.Int64(keysField)
	}

	go l.run(updates)

	return l
}

func (l *Ledger) run(updates <-chan docstore.Document) {
	for doc := range updates {
		l.setBalance(doc.Int64(keysField))
	}
}

func (l *Ledger) setBalance(balance int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	l.balance = balance

	for _, ch := range l.watchers {
		select {
		case ch <- balance:
		default:
			// Replace the pending value so the watcher sees the latest
			select {
			case <-ch:
			default:
			}
			ch <- balance
		}
	}
}

// Balance returns the current mirrored balance
func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Watch subscribes to balance updates. The current balance is delivered
// immediately; afterwards the channel always holds the most recent value,
// not a queue of deltas. The returned cancel must be called on teardown.
func (l *Ledger) Watch() (<-chan int64, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	watcherID := l.nextID
	l.nextID++

	ch := make(chan int64, 1)
	ch <- l.balance
	l.watchers[watcherID] = ch

	cancel := func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		if ch, ok := l.watchers[watcherID]; ok {
			delete(l.watchers, watcherID)
			close(ch)
		}
	}

	return ch, cancel
}

// AddKeys credits the balance by amount
func (l *Ledger) AddKeys(ctx context.Context, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if _, err := l.store.Increment(ctx, usersCollection, l.userID, keysField, amount); err != nil {
		return fmt.Errorf("error crediting keys: %w", err)
	}

	return nil
}

// SubtractKeys debits the balance by amount. The decrement is unconditional;
// sufficiency is not checked here.
func (l *Ledger) SubtractKeys(ctx context.Context, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if _, err := l.store.Increment(ctx, usersCollection, l.userID, keysField, -amount); err != nil {
		return fmt.Errorf("error debiting keys: %w", err)
	}

	return nil
}

// Close tears the mirror down. Watcher channels are closed and later store
// updates are ignored.
func (l *Ledger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true

	for id, ch := range l.watchers {
		delete(l.watchers, id)
		close(ch)
	}
	l.mu.Unlock()

	l.cancel()
}
