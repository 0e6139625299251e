package state

import (
	"fmt"

	"github.com/zenithflow/zenithflow/internal/models"
)

// Task mutations. All undoable.

// CreateTask appends a task. Implements the timeline gesture sink.
func (s *Store) CreateTask(task models.Task) {
	s.mutate(true, func(st *models.AppState) {
		st.Tasks = append(st.Tasks, task)
		s.refreshDailyStatsLocked(st)
	})
}

// CreateTasks appends several tasks in one undo step, e.g. a generated
// ritual plan.
func (s *Store) CreateTasks(tasks []models.Task) {
	if len(tasks) == 0 {
		return
	}
	s.mutate(true, func(st *models.AppState) {
		st.Tasks = append(st.Tasks, tasks...)
		s.refreshDailyStatsLocked(st)
	})
}

// UpdateTask replaces the task with the same id. Unknown ids are ignored.
func (s *Store) UpdateTask(task models.Task) {
	s.mutate(true, func(st *models.AppState) {
		for i := range st.Tasks {
			if st.Tasks[i].ID == task.ID {
				st.Tasks[i] = task
				break
			}
		}
		s.refreshDailyStatsLocked(st)
	})
}

// DeleteTask removes a task and returns it so the caller can propagate the
// deletion to a linked remote event. ok is false when the id is unknown.
func (s *Store) DeleteTask(id string) (removed models.Task, ok bool) {
	s.mutate(true, func(st *models.AppState) {
		for i := range st.Tasks {
			if st.Tasks[i].ID == id {
				removed = st.Tasks[i]
				ok = true
				st.Tasks = append(st.Tasks[:i], st.Tasks[i+1:]...)
				break
			}
		}
		s.refreshDailyStatsLocked(st)
	})
	return removed, ok
}

// ToggleTaskStatus flips a task between Planned and Completed.
func (s *Store) ToggleTaskStatus(id string) {
	s.mutate(true, func(st *models.AppState) {
		for i := range st.Tasks {
			if st.Tasks[i].ID != id {
				continue
			}
			if st.Tasks[i].Status == models.TaskStatusCompleted {
				st.Tasks[i].Status = models.TaskStatusPlanned
			} else {
				st.Tasks[i].Status = models.TaskStatusCompleted
			}
			break
		}
		s.refreshDailyStatsLocked(st)
	})
}

// SetTaskStart writes a task's scheduled time. Implements the gesture sink;
// called on every pointer move of a drag.
func (s *Store) SetTaskStart(id, clock string) {
	s.mutate(true, func(st *models.AppState) {
		for i := range st.Tasks {
			if st.Tasks[i].ID == id {
				st.Tasks[i].ScheduledTime = clock
				break
			}
		}
	})
}

// SetTaskDuration writes a task's planned duration. Implements the gesture sink.
func (s *Store) SetTaskDuration(id string, minutes int) {
	s.mutate(true, func(st *models.AppState) {
		for i := range st.Tasks {
			if st.Tasks[i].ID == id {
				st.Tasks[i].DurationMinutes = minutes
				break
			}
		}
	})
}

// LinkTask records the remote calendar event id on a task.
func (s *Store) LinkTask(id, googleEventID string) {
	s.mutate(true, func(st *models.AppState) {
		for i := range st.Tasks {
			if st.Tasks[i].ID == id {
				st.Tasks[i].GoogleEventID = googleEventID
				break
			}
		}
	})
}

// AdoptTasks appends tasks synthesized by calendar reconciliation. Not
// undoable: undoing a sync-created task would immediately resurrect on the
// next sync.
func (s *Store) AdoptTasks(tasks []models.Task) {
	if len(tasks) == 0 {
		return
	}
	s.mutate(false, func(st *models.AppState) {
		st.Tasks = append(st.Tasks, tasks...)
		s.refreshDailyStatsLocked(st)
	})
}

// ReplaceEvents swaps the whole event list after a calendar merge. Not
// undoable for the same reason as AdoptTasks.
func (s *Store) ReplaceEvents(events []models.CalendarEvent) {
	s.mutate(false, func(st *models.AppState) {
		st.Events = events
	})
}

// Event mutations. All undoable.

// CreateEvent appends a calendar event.
func (s *Store) CreateEvent(event models.CalendarEvent) {
	s.mutate(true, func(st *models.AppState) {
		st.Events = append(st.Events, event)
	})
}

// UpdateEvent replaces the event with the same id.
func (s *Store) UpdateEvent(event models.CalendarEvent) {
	s.mutate(true, func(st *models.AppState) {
		for i := range st.Events {
			if st.Events[i].ID == event.ID {
				st.Events[i] = event
				break
			}
		}
	})
}

// DeleteEvent removes an event and returns it for remote propagation.
func (s *Store) DeleteEvent(id string) (removed models.CalendarEvent, ok bool) {
	s.mutate(true, func(st *models.AppState) {
		for i := range st.Events {
			if st.Events[i].ID == id {
				removed = st.Events[i]
				ok = true
				st.Events = append(st.Events[:i], st.Events[i+1:]...)
				break
			}
		}
	})
	return removed, ok
}

// SetEventStart writes an event's start time. Implements the gesture sink.
func (s *Store) SetEventStart(id, clock string) {
	s.mutate(true, func(st *models.AppState) {
		for i := range st.Events {
			if st.Events[i].ID == id {
				st.Events[i].StartTime = clock
				break
			}
		}
	})
}

// SetEventDuration writes an event's duration. Implements the gesture sink.
func (s *Store) SetEventDuration(id string, minutes int) {
	s.mutate(true, func(st *models.AppState) {
		for i := range st.Events {
			if st.Events[i].ID == id {
				st.Events[i].DurationMinutes = minutes
				break
			}
		}
	})
}

// ApplyRitualPlan materializes a generated morning plan: the advice becomes
// the daily mantra and each suggested slot becomes a planned task. One undo
// step so the whole plan can be rejected at once.
func (s *Store) ApplyRitualPlan(date string, plan models.RitualPlan) {
	now := s.now()
	s.mutate(true, func(st *models.AppState) {
		st.Mantra = plan.Advice
		for i, slot := range plan.Tasks {
			st.Tasks = append(st.Tasks, models.Task{
				ID:              fmt.Sprintf("task-%d-%d", now.UnixMilli(), i),
				Title:           slot.Title,
				Date:            date,
				Category:        models.InferCategory(slot.Title),
				DurationMinutes: slot.DurationMinutes,
				ScheduledTime:   slot.StartTime,
				Status:          models.TaskStatusPlanned,
				IsEssential:     slot.IsEssential,
				Origin:          models.TaskOriginDaily,
			})
		}
		s.refreshDailyStatsLocked(st)
	})
}

// Routine and todo mutations. Undoable.

// SetRoutine replaces the daily habit record and reprojects today's stats.
func (s *Store) SetRoutine(routine models.Routine) {
	s.mutate(true, func(st *models.AppState) {
		st.Routine = routine
		s.refreshDailyStatsLocked(st)
	})
}

// SetTodos replaces the freeform checklist.
func (s *Store) SetTodos(todos []models.TodoItem) {
	s.mutate(true, func(st *models.AppState) {
		st.Todos = todos
	})
}

// Knowledge hub mutations. Undoable.

// AddKnowledge prepends a knowledge entry so the newest reading surfaces
// first.
func (s *Store) AddKnowledge(item models.KnowledgeItem) {
	s.mutate(true, func(st *models.AppState) {
		st.Knowledge = append([]models.KnowledgeItem{item}, st.Knowledge...)
	})
}

// DeleteKnowledge removes a knowledge entry. ok is false when the id is
// unknown.
func (s *Store) DeleteKnowledge(id string) bool {
	var ok bool
	s.mutate(true, func(st *models.AppState) {
		for i := range st.Knowledge {
			if st.Knowledge[i].ID == id {
				st.Knowledge = append(st.Knowledge[:i], st.Knowledge[i+1:]...)
				ok = true
				break
			}
		}
	})
	return ok
}

// Ledger mutations. The transaction ledger is append-only and intentionally
// excluded from undo.

// AddTransaction appends a ledger entry.
func (s *Store) AddTransaction(tx models.Transaction) {
	s.mutate(false, func(st *models.AppState) {
		st.Transactions = append(st.Transactions, tx)
	})
}

// DeleteTransaction removes a ledger entry. The only permitted mutation of
// an existing transaction.
func (s *Store) DeleteTransaction(id string) bool {
	var ok bool
	s.mutate(false, func(st *models.AppState) {
		for i := range st.Transactions {
			if st.Transactions[i].ID == id {
				st.Transactions = append(st.Transactions[:i], st.Transactions[i+1:]...)
				ok = true
				break
			}
		}
	})
	return ok
}

// Scalar mutations. Not undoable.

// SetGoals replaces the goal strings.
func (s *Store) SetGoals(goals []string) {
	s.mutate(false, func(st *models.AppState) {
		st.Goals = goals
	})
}

// SetReview replaces the daily review text.
func (s *Store) SetReview(review string) {
	s.mutate(false, func(st *models.AppState) {
		st.Review = review
	})
}

// AddFocusMinutes accumulates completed focus time and bumps the timer
// session counter.
func (s *Store) AddFocusMinutes(minutes int) {
	s.mutate(false, func(st *models.AppState) {
		st.TotalFocusMinutes += minutes
		st.TimerSessions++
		s.refreshDailyStatsLocked(st)
	})
}

// Analysis results are replaced by same-key writes, never history-tracked.

// SetDailyAnalysis stores a reflection analysis keyed by date.
func (s *Store) SetDailyAnalysis(date string, a models.ReflectionAnalysis) {
	s.mutate(false, func(st *models.AppState) {
		st.DailyAnalyses[date] = a
	})
}

// DeleteDailyAnalysis removes a reflection analysis.
func (s *Store) DeleteDailyAnalysis(date string) {
	s.mutate(false, func(st *models.AppState) {
		delete(st.DailyAnalyses, date)
	})
}

// SetWeeklyAnalysis stores a period synthesis keyed by the week start date.
func (s *Store) SetWeeklyAnalysis(weekStart string, a models.WeeklyAnalysis) {
	s.mutate(false, func(st *models.AppState) {
		st.WeeklyAnalyses[weekStart] = a
	})
}

// SetFinanceAnalysis stores a finance analysis keyed by period label.
func (s *Store) SetFinanceAnalysis(period string, a models.FinanceAnalysis) {
	s.mutate(false, func(st *models.AppState) {
		st.FinanceAnalyses[period] = a
	})
}
