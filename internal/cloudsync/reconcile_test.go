package cloudsync

import (
	"testing"

	"github.com/zenithflow/zenithflow/internal/models"
)

func TestReconcileTasksCreatesForUnlinkedTodayEvents(t *testing.T) {
	t.Parallel()

	today := "2026-03-02"
	fetched := []models.CalendarEvent{
		{ID: "e1", Title: "Standup", Date: today, StartTime: "09:30", DurationMinutes: 15, GoogleEventID: "gev-1"},
		{ID: "e2", Title: "1:1", Date: today, StartTime: "14:00", DurationMinutes: 30, GoogleEventID: "gev-2"},
		{ID: "e3", Title: "Tomorrow", Date: "2026-03-03", StartTime: "10:00", DurationMinutes: 60, GoogleEventID: "gev-3"},
		{ID: "e4", Title: "Local only", Date: today, StartTime: "16:00", DurationMinutes: 30},
	}
	tasks := []models.Task{
		{ID: "t1", Title: "Standup", Date: today, GoogleEventID: "gev-1"},
	}

	created := ReconcileTasks(fetched, tasks, today, models.TaskStatusPlanned)
	if len(created) != 1 {
		t.Fatalf("got %d created tasks, want 1: %+v", len(created), created)
	}

	got := created[0]
	if got.ID != "gev-2" || got.GoogleEventID != "gev-2" {
		t.Errorf("created task ids = (%q, %q), want external id for both", got.ID, got.GoogleEventID)
	}
	if got.Category != models.TaskCategoryEvent {
		t.Errorf("category = %q, want %q", got.Category, models.TaskCategoryEvent)
	}
	if got.ScheduledTime != "14:00" || got.DurationMinutes != 30 {
		t.Errorf("schedule = (%q, %d), want (14:00, 30)", got.ScheduledTime, got.DurationMinutes)
	}
	if got.Status != models.TaskStatusPlanned {
		t.Errorf("status = %q, want planned", got.Status)
	}
}

func TestReconcileTasksIdempotent(t *testing.T) {
	t.Parallel()

	today := "2026-03-02"
	fetched := []models.CalendarEvent{
		{ID: "e1", Title: "Standup", Date: today, StartTime: "09:30", DurationMinutes: 15, GoogleEventID: "gev-1"},
		{ID: "e2", Title: "Planning", Date: today, StartTime: "11:00", DurationMinutes: 45, GoogleEventID: "gev-2"},
	}

	var tasks []models.Task
	first := ReconcileTasks(fetched, tasks, today, models.TaskStatusCompleted)
	tasks = append(tasks, first...)
	countAfterFirst := len(tasks)

	second := ReconcileTasks(fetched, tasks, today, models.TaskStatusCompleted)
	tasks = append(tasks, second...)

	if len(second) != 0 {
		t.Fatalf("second run created %d tasks, want 0", len(second))
	}
	if len(tasks) != countAfterFirst {
		t.Fatalf("task count drifted: %d after first, %d after second", countAfterFirst, len(tasks))
	}
}

func TestReconcileTasksDuplicateRemoteIDs(t *testing.T) {
	t.Parallel()

	today := "2026-03-02"
	fetched := []models.CalendarEvent{
		{ID: "e1", Title: "Dup", Date: today, StartTime: "09:00", DurationMinutes: 30, GoogleEventID: "gev-x"},
		{ID: "e2", Title: "Dup again", Date: today, StartTime: "09:00", DurationMinutes: 30, GoogleEventID: "gev-x"},
	}

	created := ReconcileTasks(fetched, nil, today, models.TaskStatusPlanned)
	if len(created) != 1 {
		t.Fatalf("got %d created tasks for duplicated external id, want 1", len(created))
	}
}

func TestMergeEventsUpsertsByExternalID(t *testing.T) {
	t.Parallel()

	local := []models.CalendarEvent{
		{ID: "e1", Title: "Old title", Date: "2026-03-02", StartTime: "09:00", DurationMinutes: 30, GoogleEventID: "gev-1"},
		{ID: "e2", Title: "Local draft", Date: "2026-03-02", StartTime: "12:00", DurationMinutes: 60},
	}
	fetched := []models.CalendarEvent{
		{ID: "gev-1", Title: "Renamed remotely", Date: "2026-03-02", StartTime: "09:15", DurationMinutes: 45, GoogleEventID: "gev-1"},
		{ID: "gev-9", Title: "Brand new", Date: "2026-03-02", StartTime: "15:00", DurationMinutes: 30, GoogleEventID: "gev-9"},
	}

	merged := MergeEvents(local, fetched)
	if len(merged) != 3 {
		t.Fatalf("got %d merged events, want 3: %+v", len(merged), merged)
	}
	if merged[0].Title != "Renamed remotely" || merged[0].StartTime != "09:15" {
		t.Errorf("remote edit not applied in place: %+v", merged[0])
	}
	if merged[1].Title != "Local draft" {
		t.Errorf("unlinked local event disturbed: %+v", merged[1])
	}
	if merged[2].GoogleEventID != "gev-9" {
		t.Errorf("new remote event not appended: %+v", merged[2])
	}
}
