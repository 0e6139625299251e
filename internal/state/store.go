// Package state owns the canonical in-memory application state. Every
// mutation flows through a store setter; undoable setters capture a deep
// snapshot of the prior state into a bounded ring buffer first, and every
// mutation fires the change notification the auto-saver debounces on.
package state

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zenithflow/zenithflow/internal/models"
)

const (
	// HistoryLimit bounds the undo ring buffer
	HistoryLimit = 50
	// undoGuardDelay is how long snapshot capture stays suppressed after an
	// undo restore, so the restore itself is not captured as a new step.
	undoGuardDelay = 10 * time.Millisecond
)

// Store is the single source of truth for one user's application state. All
// methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	state   models.AppState
	history []models.AppState
	undoing bool

	onChange func()
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a store seeded with the given state. logger may be nil.
func New(initial models.AppState, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{state: initial, logger: logger, now: time.Now}
}

// OnChange registers the callback fired after every mutation. Used by the
// auto-saver to restart its debounce window. Must be set before the store is
// shared.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// State returns a deep copy of the current state.
func (s *Store) State() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// HistoryLen returns the number of captured undo snapshots.
func (s *Store) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// today returns the store's current date string.
func (s *Store) today() string {
	return s.now().Format("2006-01-02")
}

// snapshotLocked captures the pre-mutation state into the history ring,
// dropping the oldest entry at capacity. No-op while an undo is applying.
func (s *Store) snapshotLocked() {
	if s.undoing {
		return
	}
	if len(s.history) >= HistoryLimit {
		s.history = s.history[len(s.history)-(HistoryLimit-1):]
	}
	s.history = append(s.history, s.state.Clone())
}

// mutate runs fn under the lock and fires the change notification. undoable
// mutations snapshot the prior state first.
func (s *Store) mutate(undoable bool, fn func(st *models.AppState)) {
	s.mu.Lock()
	if undoable {
		s.snapshotLocked()
	}
	fn(&s.state)
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Undo restores the most recent snapshot atomically. Undoing with an empty
// history is a no-op. Snapshot capture stays suppressed for a short window
// after the restore.
func (s *Store) Undo() bool {
	s.mu.Lock()
	if len(s.history) == 0 {
		s.mu.Unlock()
		return false
	}
	s.undoing = true
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.state = last
	notify := s.onChange
	s.mu.Unlock()

	time.AfterFunc(undoGuardDelay, func() {
		s.mu.Lock()
		s.undoing = false
		s.mu.Unlock()
	})

	s.logger.Debug("state_undo_applied")
	if notify != nil {
		notify()
	}
	return true
}

// Replace swaps in a fully loaded state, e.g. after a cloud restore. Not
// undoable and clears the history, since snapshots from the previous state
// tree would be misleading.
func (s *Store) Replace(next models.AppState) {
	s.mu.Lock()
	s.state = next.Clone()
	s.history = nil
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// refreshDailyStatsLocked reprojects today's DailyStats from the routine,
// focus total, and task completion rate. Called whenever any of those change.
func (s *Store) refreshDailyStatsLocked(st *models.AppState) {
	date := s.today()
	total, completed := 0, 0
	for _, t := range st.Tasks {
		if t.Date != date {
			continue
		}
		total++
		if t.Status == models.TaskStatusCompleted {
			completed++
		}
	}
	rate := 0
	if total > 0 {
		rate = int(float64(completed)/float64(total)*100 + 0.5)
	}
	st.DailyStats[date] = models.DailyStats{
		Date:           date,
		WakeTime:       st.Routine.Wake,
		Meditation:     st.Routine.Meditation,
		Exercise:       st.Routine.Exercise,
		FocusMinutes:   st.TotalFocusMinutes,
		CompletionRate: rate,
	}
}
