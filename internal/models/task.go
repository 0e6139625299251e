package models

import "strings"

// TaskCategory classifies what kind of work a task represents
type TaskCategory string

const (
	TaskCategoryLecture         TaskCategory = "Lecture"
	TaskCategorySelfStudy       TaskCategory = "Self Study"
	TaskCategoryEnglishSpeaking TaskCategory = "English Speaking"
	TaskCategoryAIPractice      TaskCategory = "AI Practice"
	TaskCategoryCryptoAnalysis  TaskCategory = "Crypto Analysis"
	TaskCategoryEvent           TaskCategory = "Event"
	TaskCategoryGoal            TaskCategory = "Goal"
	TaskCategoryOther           TaskCategory = "Other"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusPlanned   TaskStatus = "Planned"
	TaskStatusCompleted TaskStatus = "Completed"
	TaskStatusMigrated  TaskStatus = "Migrated"
)

// TaskOrigin distinguishes where a task was created
type TaskOrigin string

const (
	// TaskOriginDaily marks tasks created on the daily timeline (drag-create or ritual)
	TaskOriginDaily TaskOrigin = "daily"
	// TaskOriginPlanning marks tasks created from the weekly/monthly planners
	TaskOriginPlanning TaskOrigin = "planning"
)

// SubTask is an ordered checklist entry inside a task
type SubTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is a schedulable unit of work. A task with GoogleEventID set is
// "linked": deleting it must also request deletion of the remote event, and
// time/duration edits propagate to the remote event best-effort.
type Task struct {
	ID                    string       `json:"id"`
	Title                 string       `json:"title"`
	Category              TaskCategory `json:"type"`
	DurationMinutes       int          `json:"durationMinutes"`
	Date                  string       `json:"date"` // YYYY-MM-DD
	ActualDurationMinutes int          `json:"actualDurationMinutes,omitempty"`
	ScheduledTime         string       `json:"scheduledTime,omitempty"` // HH:MM
	Status                TaskStatus   `json:"status"`
	IsEssential           bool         `json:"isEssential"`
	Reflection            string       `json:"reflection,omitempty"`
	Location              string       `json:"location,omitempty"`
	SubTasks              []SubTask    `json:"subTasks,omitempty"`
	Origin                TaskOrigin   `json:"origin,omitempty"`
	GoogleEventID         string       `json:"googleEventId,omitempty"`
}

// Linked reports whether the task mirrors a remote calendar event.
func (t *Task) Linked() bool {
	return t.GoogleEventID != ""
}

// InferCategory guesses a task category from its title, used for generated
// plan slots where the model supplies only free text.
func InferCategory(title string) TaskCategory {
	lower := strings.ToLower(title)
	switch {
	case containsAny(lower, "lecture", "class", "seminar"):
		return TaskCategoryLecture
	case containsAny(lower, "english", "speaking", "conversation"):
		return TaskCategoryEnglishSpeaking
	case containsAny(lower, "ai ", "prompt", "model"):
		return TaskCategoryAIPractice
	case containsAny(lower, "crypto", "trading", "chart"):
		return TaskCategoryCryptoAnalysis
	case containsAny(lower, "study", "read", "review", "practice"):
		return TaskCategorySelfStudy
	default:
		return TaskCategoryOther
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
