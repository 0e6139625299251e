package models

// EventCategory classifies a fixed calendar block
type EventCategory string

const (
	EventCategoryMeeting     EventCategory = "Meeting"
	EventCategoryPreparation EventCategory = "Preparation"
	EventCategoryDeadline    EventCategory = "Deadline"
	EventCategoryWork        EventCategory = "Work"
	EventCategoryOther       EventCategory = "Other"
)

// CalendarEvent is a fixed occurrence, structurally parallel to Task but
// without completion semantics: no status, essential flag, or reflection.
type CalendarEvent struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Date            string        `json:"date"`      // YYYY-MM-DD
	StartTime       string        `json:"startTime"` // HH:MM
	DurationMinutes int           `json:"durationMinutes"`
	Category        EventCategory `json:"type"`
	Notes           string        `json:"notes,omitempty"`
	GoogleEventID   string        `json:"googleEventId,omitempty"`
}
