package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymkeyapp/gymkey-server/internal/docstore"
)

func TestLedgerStartsAtZero(t *testing.T) {
	hub := NewHub(docstore.NewMemoryStore())
	defer hub.Close()

	assert.Equal(t, int64(0), hub.ForUser("u1").Balance())
}

func TestLedgerSeedsFromExistingDocument(t *testing.T) {
	store := docstore.NewMemoryStore()
	_, err := store.Increment(context.Background(), "users", "u1", "keys", 250)
	require.NoError(t, err)

	hub := NewHub(store)
	defer hub.Close()

	assert.Equal(t, int64(250), hub.ForUser("u1").Balance())
}

func TestLedgerBalanceIsSumOfDeltas(t *testing.T) {
	store := docstore.NewMemoryStore()
	hub := NewHub(store)
	defer hub.Close()

	l := hub.ForUser("u1")
	ctx := context.Background()

	require.NoError(t, l.AddKeys(ctx, 100))
	require.NoError(t, l.SubtractKeys(ctx, 30))
	require.NoError(t, l.AddKeys(ctx, 5))
	require.NoError(t, l.SubtractKeys(ctx, 200))

	// No floor is enforced: the stored balance is exactly the sum of all
	// applied deltas, negative here
	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(-125), doc.Int64("keys"))

	require.Eventually(t, func() bool {
		return l.Balance() == int64(-125)
	}, time.Second, 10*time.Millisecond)
}

// startupWriteStore sneaks a balance write in while a mirror is starting
// up, between subscription registration and the seed read
type startupWriteStore struct {
	*docstore.MemoryStore
}

func (s *startupWriteStore) Watch(collection, id string) (<-chan docstore.Document, func()) {
	_, _ = s.MemoryStore.Increment(context.Background(), collection, id, "keys", 40)
	return s.MemoryStore.Watch(collection, id)
}

func TestLedgerSeesWriteDuringStartup(t *testing.T) {
	hub := NewHub(&startupWriteStore{docstore.NewMemoryStore()})
	defer hub.Close()

	// The subscription registers before the seed read, so a write landing in
	// between is picked up by the seed instead of lost
	assert.Equal(t, int64(40), hub.ForUser("u1").Balance())
}

func TestLedgerRejectsNonPositiveAmounts(t *testing.T) {
	hub := NewHub(docstore.NewMemoryStore())
	defer hub.Close()

	l := hub.ForUser("u1")
	ctx := context.Background()

	assert.ErrorIs(t, l.AddKeys(ctx, 0), ErrInvalidAmount)
	assert.ErrorIs(t, l.AddKeys(ctx, -5), ErrInvalidAmount)
	assert.ErrorIs(t, l.SubtractKeys(ctx, 0), ErrInvalidAmount)
	assert.ErrorIs(t, l.SubtractKeys(ctx, -5), ErrInvalidAmount)
}

func TestLedgerWatchDeliversCurrentThenLatest(t *testing.T) {
	hub := NewHub(docstore.NewMemoryStore())
	defer hub.Close()

	l := hub.ForUser("u1")

	updates, cancel := l.Watch()
	defer cancel()

	// First delivery is the current balance
	select {
	case balance := <-updates:
		assert.Equal(t, int64(0), balance)
	case <-time.After(time.Second):
		t.Fatal("no initial balance delivered")
	}

	require.NoError(t, l.AddKeys(context.Background(), 100))

	select {
	case balance := <-updates:
		assert.Equal(t, int64(100), balance)
	case <-time.After(time.Second):
		t.Fatal("no balance update delivered")
	}
}

func TestLedgerWatchCoalescesToLatest(t *testing.T) {
	hub := NewHub(docstore.NewMemoryStore())
	defer hub.Close()

	l := hub.ForUser("u1")
	ctx := context.Background()

	updates, cancel := l.Watch()
	defer cancel()

	// Drain the initial value, then write repeatedly without reading
	<-updates
	for i := 0; i < 5; i++ {
		require.NoError(t, l.AddKeys(ctx, 10))
	}

	// The watcher converges on the final balance; intermediates may be
	// skipped but never reordered past it
	require.Eventually(t, func() bool {
		select {
		case balance := <-updates:
			return balance == int64(50)
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestHubReturnsSameLedger(t *testing.T) {
	hub := NewHub(docstore.NewMemoryStore())
	defer hub.Close()

	assert.Same(t, hub.ForUser("u1"), hub.ForUser("u1"))
	assert.NotSame(t, hub.ForUser("u1"), hub.ForUser("u2"))
}

func TestLedgerCloseClosesWatchers(t *testing.T) {
	hub := NewHub(docstore.NewMemoryStore())

	l := hub.ForUser("u1")
	updates, cancel := l.Watch()
	defer cancel()

	<-updates
	hub.Close()

	_, open := <-updates
	assert.False(t, open)
}
