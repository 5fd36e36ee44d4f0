package rewards

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gymkeyapp/gymkey-server/internal/ledger"
	"github.com/gymkeyapp/gymkey-server/internal/models"
)

const (
	// AnimationEndFrame is the last frame of the confirmation animation;
	// playback always runs from frame 0.
	AnimationEndFrame = 120

	defaultDisplayDuration = 3 * time.Second
)

// ErrFlowClosed is returned when a redemption is attempted on a torn-down
// flow
var ErrFlowClosed = errors.New("redemption flow closed")

// State is the confirmation-sequence state of a redemption flow
type State int

const (
	StateIdle State = iota
	StateDebiting
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateDebiting:
		return "debiting"
	case StatePlaying:
		return "playing"
	default:
		return "idle"
	}
}

// Flow runs one user's redemptions through the confirmation sequence
// Idle -> Debiting -> Playing -> Idle. The debit is an unconditional key
// decrement: sufficiency is not checked, and a reward is never marked
// consumed, so redemption is repeatable. A redeem while the previous
// confirmation is still showing stops the pending timer first, so exactly
// one timer is ever armed.
type Flow struct {
	keys            *ledger.Ledger
	displayDuration time.Duration

	mu     sync.Mutex
	state  State
	timer  *time.Timer
	gen    uint64
	closed bool
}

// NewFlow creates a redemption flow over the user's key ledger
func NewFlow(keys *ledger.Ledger) *Flow {
	return &Flow{
		keys:            keys,
		displayDuration: defaultDisplayDuration,
	}
}

// Redeem debits the reward's cost and starts the confirmation sequence.
// The debit is applied even when the confirmation is never observed; the
// two are not atomic.
func (f *Flow) Redeem(ctx context.Context, reward *models.Reward) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrFlowClosed
	}

	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}

	f.state = StateDebiting
	if err := f.keys.SubtractKeys(ctx, reward.Cost); err != nil {
		f.state = StateIdle
		return err
	}

	f.state = StatePlaying
	f.gen++
	gen := f.gen
	f.timer = time.AfterFunc(f.displayDuration, func() {
		f.hide(gen)
	})

	return nil
}

// hide clears the confirmation, but only for the generation that armed it.
// A timer that fired just before Stop can still run its callback; the
// generation check keeps that stale callback from cutting a fresh
// confirmation short.
func (f *Flow) hide(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || gen != f.gen {
		return
	}

	f.state = StateIdle
	f.timer = nil
}

// State returns the current confirmation state
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// DisplayDuration returns how long the confirmation stays visible
func (f *Flow) DisplayDuration() time.Duration {
	return f.displayDuration
}

// Close stops any pending timer. A closed flow never fires callbacks or
// accepts redemptions.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
