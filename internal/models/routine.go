package models

// Routine is the singleton daily-habit record, mutated in place and projected
// per-day into DailyStats.
type Routine struct {
	Wake       string `json:"wake"` // HH:MM
	Meditation bool   `json:"meditation"`
	Exercise   bool   `json:"exercise"`
}

// DefaultRoutine returns the routine used before the user records anything.
func DefaultRoutine() Routine {
	return Routine{Wake: "07:30"}
}

// DailyStats is the per-date projection of routine plus accumulated focus
// minutes and task completion rate. Keyed by date string.
type DailyStats struct {
	Date           string `json:"date"` // YYYY-MM-DD
	WakeTime       string `json:"wakeTime"`
	Meditation     bool   `json:"meditation"`
	Exercise       bool   `json:"exercise"`
	FocusMinutes   int    `json:"focusMinutes"`
	CompletionRate int    `json:"completionRate"` // 0-100
}
