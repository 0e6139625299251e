package cloudsync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/state"
)

// Syncer pulls remote calendar events into the local state and propagates
// linked-task edits back out. The calendar is best-effort: outbound failures
// are logged and local state is still updated optimistically.
type Syncer struct {
	store    *state.Store
	calendar Calendar
	session  SessionState
	logger   *zap.Logger
	now      func() time.Time
}

// NewSyncer creates a calendar syncer. logger may be nil.
func NewSyncer(store *state.Store, calendar Calendar, session SessionState, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{store: store, calendar: calendar, session: session, logger: logger, now: time.Now}
}

// SyncCalendar fetches remote events, merges them into the local event list,
// and synthesizes local tasks for today's events that no task references yet.
// status is the call-site policy for the synthesized tasks. Idempotent for
// unchanged remote data.
func (s *Syncer) SyncCalendar(ctx context.Context, status models.TaskStatus) (created int, err error) {
	today := s.now().Format("2006-01-02")
	dayStart := time.Date(s.now().Year(), s.now().Month(), s.now().Day(), 0, 0, 0, 0, s.now().Location())

	fetched, err := s.calendar.ListEvents(ctx, dayStart)
	if err != nil {
		s.session.SetSynced(false)
		return 0, fmt.Errorf("failed to list remote events: %w", err)
	}

	st := s.store.State()
	s.store.ReplaceEvents(MergeEvents(st.Events, fetched))

	newTasks := ReconcileTasks(fetched, st.Tasks, today, status)
	if len(newTasks) > 0 {
		s.store.AdoptTasks(newTasks)
	}

	s.logger.Info("calendar_synced",
		zap.Int("fetched_events", len(fetched)),
		zap.Int("reconciled_tasks", len(newTasks)),
	)
	return len(newTasks), nil
}

// Ready reports whether a sync session is established. Implements the
// timeline gesture mirror.
func (s *Syncer) Ready() bool {
	return s.session.Synced()
}

// Push inserts a remote event for a newly created task and returns its id.
// Implements the timeline gesture mirror.
func (s *Syncer) Push(ctx context.Context, title, date, startTime string, durationMinutes int) (string, error) {
	return s.calendar.InsertEvent(ctx, title, date, startTime, durationMinutes)
}

// PropagateTaskUpdate pushes time/duration edits of a linked task to its
// remote event. Failures are logged only; local state already applied.
func (s *Syncer) PropagateTaskUpdate(ctx context.Context, task models.Task) {
	if !task.Linked() {
		return
	}
	start := task.ScheduledTime
	if start == "" {
		start = "09:00"
	}
	if err := s.calendar.UpdateEvent(ctx, task.GoogleEventID, task.Title, task.Date, start, task.DurationMinutes); err != nil {
		s.logger.Warn("calendar_update_failed",
			zap.String("google_event_id", task.GoogleEventID),
			zap.Error(err),
		)
	}
}

// PropagateEventUpdate pushes edits of a linked calendar event outward.
func (s *Syncer) PropagateEventUpdate(ctx context.Context, event models.CalendarEvent) {
	if event.GoogleEventID == "" {
		return
	}
	if err := s.calendar.UpdateEvent(ctx, event.GoogleEventID, event.Title, event.Date, event.StartTime, event.DurationMinutes); err != nil {
		s.logger.Warn("calendar_update_failed",
			zap.String("google_event_id", event.GoogleEventID),
			zap.Error(err),
		)
	}
}

// PropagateDelete requests deletion of the remote event backing a deleted
// linked item. Best-effort.
func (s *Syncer) PropagateDelete(ctx context.Context, googleEventID string) {
	if googleEventID == "" {
		return
	}
	if err := s.calendar.DeleteEvent(ctx, googleEventID); err != nil {
		s.logger.Warn("calendar_delete_failed",
			zap.String("google_event_id", googleEventID),
			zap.Error(err),
		)
	}
}
