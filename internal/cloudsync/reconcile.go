package cloudsync

import (
	"github.com/zenithflow/zenithflow/internal/models"
)

// ReconcileTasks synthesizes a local task for every fetched event dated today
// that no existing local task already references by external id. The external
// id is the sole dedup key, so repeating a reconciliation with unchanged
// remote data produces nothing new. status is the call site's policy for
// calendar-sourced tasks: already Completed or still Planned.
func ReconcileTasks(fetched []models.CalendarEvent, tasks []models.Task, today string, status models.TaskStatus) []models.Task {
	linked := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.GoogleEventID != "" {
			linked[t.GoogleEventID] = true
		}
	}

	var created []models.Task
	for _, ev := range fetched {
		if ev.Date != today || ev.GoogleEventID == "" || linked[ev.GoogleEventID] {
			continue
		}
		linked[ev.GoogleEventID] = true
		created = append(created, models.Task{
			ID:              ev.GoogleEventID,
			Title:           ev.Title,
			Date:            ev.Date,
			Category:        models.TaskCategoryEvent,
			DurationMinutes: ev.DurationMinutes,
			ScheduledTime:   ev.StartTime,
			Status:          status,
			Origin:          models.TaskOriginDaily,
			GoogleEventID:   ev.GoogleEventID,
		})
	}
	return created
}

// MergeEvents upserts fetched remote events into the local event list, keyed
// by external event id. Locally created events without an external id are
// left untouched.
func MergeEvents(local []models.CalendarEvent, fetched []models.CalendarEvent) []models.CalendarEvent {
	byGoogleID := make(map[string]int, len(local))
	for i, ev := range local {
		if ev.GoogleEventID != "" {
			byGoogleID[ev.GoogleEventID] = i
		}
	}

	merged := make([]models.CalendarEvent, len(local))
	copy(merged, local)
	for _, ev := range fetched {
		if ev.GoogleEventID == "" {
			continue
		}
		if i, ok := byGoogleID[ev.GoogleEventID]; ok {
			merged[i] = ev
		} else {
			merged = append(merged, ev)
		}
	}
	return merged
}
