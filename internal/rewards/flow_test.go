package rewards

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymkeyapp/gymkey-server/internal/docstore"
	"github.com/gymkeyapp/gymkey-server/internal/ledger"
	"github.com/gymkeyapp/gymkey-server/internal/models"
)

type countingStore struct {
	*docstore.MemoryStore
	increments int64
	lastDelta  int64
}

func (s *countingStore) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	atomic.AddInt64(&s.increments, 1)
	atomic.StoreInt64(&s.lastDelta, delta)
	return s.MemoryStore.Increment(ctx, collection, id, field, delta)
}

func newTestFlow(t *testing.T) (*Flow, *countingStore) {
	t.Helper()

	docs := &countingStore{MemoryStore: docstore.NewMemoryStore()}
	keys := ledger.NewHub(docs)
	t.Cleanup(keys.Close)

	flow := NewFlow(keys.ForUser("u1"))
	flow.displayDuration = 50 * time.Millisecond
	t.Cleanup(flow.Close)

	return flow, docs
}

func TestRedeemDebitsExactlyOnce(t *testing.T) {
	flow, docs := newTestFlow(t)

	reward := &models.Reward{ID: "r1", Name: "Solidcore", Cost: 75}
	require.NoError(t, flow.Redeem(context.Background(), reward))

	assert.Equal(t, int64(1), atomic.LoadInt64(&docs.increments))
	assert.Equal(t, int64(-75), atomic.LoadInt64(&docs.lastDelta))

	doc, err := docs.Get(context.Background(), "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(-75), doc.Int64("keys"))
}

func TestRedeemIgnoresBalanceSufficiency(t *testing.T) {
	flow, docs := newTestFlow(t)
	ctx := context.Background()

	// Balance starts at 0; the debit still applies
	reward := &models.Reward{ID: "r1", Name: "Solidcore", Cost: 500}
	require.NoError(t, flow.Redeem(ctx, reward))
	require.NoError(t, flow.Redeem(ctx, reward))

	doc, err := docs.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(-1000), doc.Int64("keys"))
}

func TestRedeemConfirmationSequence(t *testing.T) {
	flow, _ := newTestFlow(t)

	assert.Equal(t, StateIdle, flow.State())

	reward := &models.Reward{ID: "r1", Name: "Solidcore", Cost: 10}
	require.NoError(t, flow.Redeem(context.Background(), reward))

	// After a successful debit the animation is playing
	assert.Equal(t, StatePlaying, flow.State())

	// The confirmation auto-hides after the fixed display duration
	require.Eventually(t, func() bool {
		return flow.State() == StateIdle
	}, time.Second, 10*time.Millisecond)
}

func TestRedeemBeforeTimerElapsesRestartsSequence(t *testing.T) {
	flow, docs := newTestFlow(t)
	ctx := context.Background()

	reward := &models.Reward{ID: "r1", Name: "Solidcore", Cost: 10}
	require.NoError(t, flow.Redeem(ctx, reward))
	require.NoError(t, flow.Redeem(ctx, reward))

	// Both redemptions debited; only one timer is armed
	assert.Equal(t, int64(2), atomic.LoadInt64(&docs.increments))
	assert.Equal(t, StatePlaying, flow.State())

	require.Eventually(t, func() bool {
		return flow.State() == StateIdle
	}, time.Second, 10*time.Millisecond)
}

func TestRedeemAtTimerExpiryKeepsFullDuration(t *testing.T) {
	flow, _ := newTestFlow(t)
	ctx := context.Background()

	reward := &models.Reward{ID: "r1", Name: "Solidcore", Cost: 10}

	// Re-redeem right as the previous timer fires. The old timer's callback
	// may already be in flight when Stop is called; it must not hide the
	// fresh confirmation early.
	for i := 0; i < 5; i++ {
		require.NoError(t, flow.Redeem(ctx, reward))
		time.Sleep(flow.displayDuration)
		require.NoError(t, flow.Redeem(ctx, reward))

		time.Sleep(10 * time.Millisecond)
		require.Equal(t, StatePlaying, flow.State(), "iteration %d", i)

		require.Eventually(t, func() bool {
			return flow.State() == StateIdle
		}, time.Second, time.Millisecond)
	}
}

func TestRedeemAfterCloseFails(t *testing.T) {
	flow, docs := newTestFlow(t)

	flow.Close()

	reward := &models.Reward{ID: "r1", Name: "Solidcore", Cost: 10}
	err := flow.Redeem(context.Background(), reward)
	assert.ErrorIs(t, err, ErrFlowClosed)
	assert.Equal(t, int64(0), atomic.LoadInt64(&docs.increments))
}

func TestCloseDuringConfirmationDoesNotFire(t *testing.T) {
	flow, _ := newTestFlow(t)

	reward := &models.Reward{ID: "r1", Name: "Solidcore", Cost: 10}
	require.NoError(t, flow.Redeem(context.Background(), reward))

	flow.Close()
	time.Sleep(80 * time.Millisecond)

	// The closed flow keeps its last state; the hide callback never ran
	assert.Equal(t, StatePlaying, flow.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "debiting", StateDebiting.String())
	assert.Equal(t, "playing", StatePlaying.String())
}

func TestManagerReturnsSameFlowPerUser(t *testing.T) {
	keys := ledger.NewHub(docstore.NewMemoryStore())
	t.Cleanup(keys.Close)

	m := NewManager(keys)
	t.Cleanup(m.Close)

	assert.Same(t, m.FlowFor("u1"), m.FlowFor("u1"))
	assert.NotSame(t, m.FlowFor("u1"), m.FlowFor("u2"))
}
