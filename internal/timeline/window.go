package timeline

import "fmt"

const (
	// DefaultStartHour is the first visible hour of the daily timeline
	DefaultStartHour = 5
	// DefaultEndHour is the last visible hour of the daily timeline
	DefaultEndHour = 24
	// SnapMinutes is the granularity all drag interactions round to
	SnapMinutes = 15
	// DefaultTrackWidth is the horizontal percentage of the rail available to
	// item boxes; the remainder is reserved for the hour gutter
	DefaultTrackWidth = 85.0
)

// Window is the fixed visible span of the daily timeline. Times map linearly
// to vertical position within it.
type Window struct {
	StartHour  int
	EndHour    int
	TrackWidth float64
}

// DefaultWindow returns the 05:00-24:00 window used by the daily rail.
func DefaultWindow() Window {
	return Window{StartHour: DefaultStartHour, EndHour: DefaultEndHour, TrackWidth: DefaultTrackWidth}
}

// TotalMinutes returns the length of the visible window in minutes.
func (w Window) TotalMinutes() int {
	return (w.EndHour - w.StartHour) * 60
}

// StartMinutes returns the window start as minutes since midnight.
func (w Window) StartMinutes() int {
	return w.StartHour * 60
}

// ClockToMinutes converts an HH:MM string to minutes since midnight, extending
// hours before the window start past 24:00 so that cross-midnight schedules
// stay monotonic instead of wrapping. Midnight itself maps to 24:00. An empty
// or malformed time maps to 0.
func (w Window) ClockToMinutes(clock string) int {
	if clock == "" {
		return 0
	}
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0
	}
	switch {
	case h == 0:
		h = 24
	case h < w.StartHour:
		h += 24
	}
	return h*60 + m
}

// MinutesToClock converts minutes since midnight back to an HH:MM string.
// Display wraps modulo 24 hours even though internal duration math does not.
func MinutesToClock(minutes int) string {
	h := (minutes / 60) % 24
	m := minutes % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// EndClock returns the display end time for a start time and duration.
func (w Window) EndClock(start string, durationMinutes int) string {
	return MinutesToClock(w.ClockToMinutes(start) + durationMinutes)
}

// DurationBetween returns the minutes between two clock times, treating an
// end earlier than the start as crossing midnight.
func (w Window) DurationBetween(start, end string) int {
	startMins := w.ClockToMinutes(start)
	endMins := w.ClockToMinutes(end)
	if endMins < startMins {
		endMins += 24 * 60
	}
	return endMins - startMins
}

// SnapStep returns the vertical percentage corresponding to one snap unit.
func (w Window) SnapStep() float64 {
	return float64(SnapMinutes) / float64(w.TotalMinutes()) * 100
}
