package workout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gymkeyapp/gymkey-server/internal/docstore"
	"github.com/gymkeyapp/gymkey-server/internal/ledger"
	"github.com/gymkeyapp/gymkey-server/internal/models"
)

const (
	// FinishReward is the fixed key credit for finishing a workout. It is
	// not computed from session content.
	FinishReward = 100

	defaultConfirmDuration = 3 * time.Second

	dateKeyLayout = "2006-01-02"
)

// ErrInvalidDate is returned when a session date is not a YYYY-MM-DD key
var ErrInvalidDate = errors.New("invalid session date")

// Store loads and saves per-date workout sessions. Saves are wholesale
// document replacements and only happen when explicitly requested; there is
// no autosave, and loading a different date abandons whatever the client
// had not saved.
type Store struct {
	docs docstore.Store
	keys *ledger.Hub

	confirmDuration time.Duration

	mu      sync.Mutex
	banners map[string]*time.Timer
	closed  bool
}

// NewStore creates a new workout session store
func NewStore(docs docstore.Store, keys *ledger.Hub) *Store {
	return &Store{
		docs:            docs,
		keys:            keys,
		confirmDuration: defaultConfirmDuration,
		banners:         make(map[string]*time.Timer),
	}
}

func sessionCollection(userID string) string {
	return fmt.Sprintf("users/%s/workouts", userID)
}

// ValidDate reports whether date is a well-formed YYYY-MM-DD key
func ValidDate(date string) bool {
	_, err := time.Parse(dateKeyLayout, date)
	return err == nil
}

// Load fetches the session stored under the date key. When no document
// exists the default exercise list is returned without being persisted.
func (s *Store) Load(ctx context.Context, userID, date string) (*models.WorkoutSession, error) {
	if !ValidDate(date) {
		return nil, ErrInvalidDate
	}

	doc, err := s.docs.Get(ctx, sessionCollection(userID), date)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return &models.WorkoutSession{
				Date:      date,
				Exercises: DefaultSession(),
			}, nil
		}
		return nil, fmt.Errorf("error loading session: %w", err)
	}

	var session models.WorkoutSession
	if err := doc.Decode(&session); err != nil {
		return nil, fmt.Errorf("error decoding session: %w", err)
	}

	return &session, nil
}

// Save overwrites the whole session document for the date. Fields not part
// of the written document are lost.
func (s *Store) Save(ctx context.Context, userID, date string, exercises []models.Exercise) error {
	if !ValidDate(date) {
		return ErrInvalidDate
	}

	doc, err := docstore.Encode(models.WorkoutSession{
		Date:      time.Now().UTC().Format(time.RFC3339),
		Exercises: exercises,
		Completed: true,
	})
	if err != nil {
		return fmt.Errorf("error encoding session: %w", err)
	}

	if err := s.docs.Set(ctx, sessionCollection(userID), date, doc); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}

	return nil
}

// Finish persists the session and credits the fixed key reward, then shows
// the confirmation banner for a bounded duration. The credit and the banner
// are not atomic: a crash in between leaves the credit applied with no
// visible confirmation.
func (s *Store) Finish(ctx context.Context, userID, date string, exercises []models.Exercise) error {
	if err := s.Save(ctx, userID, date, exercises); err != nil {
		return err
	}

	if err := s.keys.ForUser(userID).AddKeys(ctx, FinishReward); err != nil {
		return err
	}

	s.showBanner(userID)
	return nil
}

// ConfirmationDuration returns how long the finish banner stays visible
func (s *Store) ConfirmationDuration() time.Duration {
	return s.confirmDuration
}

// ConfirmationActive reports whether the finish banner is showing for the
// user
func (s *Store) ConfirmationActive(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.banners[userID]
	return ok
}

func (s *Store) showBanner(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	// A finish while the banner is still up restarts the timer
	if timer, ok := s.banners[userID]; ok {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(s.confirmDuration, func() {
		s.hideBanner(userID, timer)
	})
	s.banners[userID] = timer
}

// hideBanner only acts for the timer that is still armed. A stopped timer
// whose callback was already in flight must not take down a banner a newer
// finish just showed.
func (s *Store) hideBanner(userID string, timer *time.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.banners[userID] == timer {
		delete(s.banners, userID)
	}
}

// Close stops all pending banner timers
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for userID, timer := range s.banners {
		timer.Stop()
		delete(s.banners, userID)
	}
}
