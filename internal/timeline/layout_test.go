package timeline

import (
	"reflect"
	"testing"

	"github.com/zenithflow/zenithflow/internal/models"
)

func TestWindowClockToMinutes(t *testing.T) {
	t.Parallel()

	win := DefaultWindow()

	tests := []struct {
		name  string
		clock string
		want  int
	}{
		{name: "morning time", clock: "09:00", want: 540},
		{name: "evening time", clock: "23:30", want: 1410},
		{name: "midnight maps past 24h", clock: "00:00", want: 1440},
		{name: "before window start extends past midnight", clock: "02:15", want: 26*60 + 15},
		{name: "window start itself", clock: "05:00", want: 300},
		{name: "empty time", clock: "", want: 0},
		{name: "malformed time", clock: "noon", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := win.ClockToMinutes(tt.clock); got != tt.want {
				t.Errorf("ClockToMinutes(%q) = %d, want %d", tt.clock, got, tt.want)
			}
		})
	}
}

func TestMinutesToClockWrapsDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		minutes int
		want    string
	}{
		{minutes: 540, want: "09:00"},
		{minutes: 1440, want: "00:00"},
		{minutes: 1500, want: "01:00"}, // past midnight wraps for readability
		{minutes: 0, want: "00:00"},
	}

	for _, tt := range tests {
		if got := MinutesToClock(tt.minutes); got != tt.want {
			t.Errorf("MinutesToClock(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestWindowDurationBetween(t *testing.T) {
	t.Parallel()

	win := DefaultWindow()
	if got := win.DurationBetween("09:00", "10:30"); got != 90 {
		t.Errorf("DurationBetween = %d, want 90", got)
	}
	if got := win.DurationBetween("23:00", "01:00"); got != 120 {
		t.Errorf("cross-midnight DurationBetween = %d, want 120", got)
	}
}

func taskAt(id, start string, duration int) models.Task {
	return models.Task{
		ID:              id,
		Title:           id,
		Date:            "2026-01-15",
		Category:        models.TaskCategoryOther,
		ScheduledTime:   start,
		DurationMinutes: duration,
		Status:          models.TaskStatusPlanned,
	}
}

func TestLayoutBasicDay(t *testing.T) {
	t.Parallel()

	win := DefaultWindow()
	items := DayItems("2026-01-15", []models.Task{
		taskAt("a", "09:00", 60),
		taskAt("b", "09:30", 60),
		taskAt("c", "11:00", 30),
	}, nil)

	boxes := win.Layout(items)
	if len(boxes) != 3 {
		t.Fatalf("expected 3 boxes, got %d", len(boxes))
	}

	byID := make(map[string]Box)
	for _, b := range boxes {
		byID[b.Item.ID] = b
	}

	half := win.TrackWidth / 2
	if byID["a"].Width != half || byID["b"].Width != half {
		t.Errorf("overlapping pair should split the track: a=%v b=%v want %v", byID["a"].Width, byID["b"].Width, half)
	}
	if byID["a"].Column == byID["b"].Column {
		t.Errorf("overlapping items share column %d", byID["a"].Column)
	}
	if byID["c"].Width != win.TrackWidth {
		t.Errorf("isolated item should take the full track, got %v", byID["c"].Width)
	}
	if byID["c"].Column != 0 {
		t.Errorf("isolated item should sit in column 0, got %d", byID["c"].Column)
	}
}

func TestLayoutIdempotent(t *testing.T) {
	t.Parallel()

	win := DefaultWindow()
	// Deliberately unordered input.
	items := []Item{
		{ID: "d", StartTime: "14:00", DurationMinutes: 30, Kind: ItemKindTask},
		{ID: "a", StartTime: "09:00", DurationMinutes: 120, Kind: ItemKindTask},
		{ID: "c", StartTime: "10:30", DurationMinutes: 60, Kind: ItemKindEvent},
		{ID: "b", StartTime: "09:30", DurationMinutes: 45, Kind: ItemKindTask},
	}

	first := win.Layout(items)
	second := win.Layout(items)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("layout is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestLayoutOverlapInvariant(t *testing.T) {
	t.Parallel()

	win := DefaultWindow()
	items := []Item{
		{ID: "a", StartTime: "08:00", DurationMinutes: 180, Kind: ItemKindTask},
		{ID: "b", StartTime: "08:30", DurationMinutes: 60, Kind: ItemKindTask},
		{ID: "c", StartTime: "09:45", DurationMinutes: 60, Kind: ItemKindTask},
		{ID: "d", StartTime: "10:00", DurationMinutes: 30, Kind: ItemKindEvent},
		{ID: "e", StartTime: "13:00", DurationMinutes: 60, Kind: ItemKindTask},
	}

	boxes := win.Layout(items)

	// Same column within a cluster implies disjoint intervals.
	for i, a := range boxes {
		for j, b := range boxes {
			if i >= j {
				continue
			}
			sameCluster := overlapsTransitively(win, boxes, a, b)
			if sameCluster && a.Column == b.Column {
				aStart := win.ClockToMinutes(a.Item.StartTime)
				aEnd := aStart + a.Item.DurationMinutes
				bStart := win.ClockToMinutes(b.Item.StartTime)
				bEnd := bStart + b.Item.DurationMinutes
				if aStart < bEnd && bStart < aEnd {
					t.Errorf("items %s and %s share column %d but overlap", a.Item.ID, b.Item.ID, a.Column)
				}
			}
			if !sameCluster {
				aStart := win.ClockToMinutes(a.Item.StartTime)
				aEnd := aStart + a.Item.DurationMinutes
				bStart := win.ClockToMinutes(b.Item.StartTime)
				bEnd := bStart + b.Item.DurationMinutes
				if aStart < bEnd && bStart < aEnd {
					t.Errorf("items %s and %s overlap but were split across clusters", a.Item.ID, b.Item.ID)
				}
			}
		}
	}
}

// overlapsTransitively reports whether two boxes belong to the same connected
// overlap group, by flood fill over pairwise interval intersection.
func overlapsTransitively(win Window, boxes []Box, a, b Box) bool {
	overlap := func(x, y Box) bool {
		xs := win.ClockToMinutes(x.Item.StartTime)
		xe := xs + x.Item.DurationMinutes
		ys := win.ClockToMinutes(y.Item.StartTime)
		ye := ys + y.Item.DurationMinutes
		return xs < ye && ys < xe
	}
	visited := map[string]bool{a.Item.ID: true}
	frontier := []Box{a}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		if cur.Item.ID == b.Item.ID {
			return true
		}
		for _, next := range boxes {
			if !visited[next.Item.ID] && overlap(cur, next) {
				visited[next.Item.ID] = true
				frontier = append(frontier, next)
			}
		}
	}
	return false
}

func TestDayItemsExcludesUnscheduledAndMirrored(t *testing.T) {
	t.Parallel()

	tasks := []models.Task{
		taskAt("scheduled", "09:00", 60),
		{ID: "unscheduled", Date: "2026-01-15", DurationMinutes: 60, Status: models.TaskStatusPlanned},
		{ID: "linked", Date: "2026-01-15", ScheduledTime: "10:00", DurationMinutes: 30, GoogleEventID: "gev-1", Status: models.TaskStatusPlanned},
	}
	events := []models.CalendarEvent{
		{ID: "gev-1", Date: "2026-01-15", StartTime: "10:00", DurationMinutes: 30, Category: models.EventCategoryOther},
		{ID: "ev-2", Date: "2026-01-15", StartTime: "12:00", DurationMinutes: 45, Category: models.EventCategoryMeeting},
		{ID: "ev-other-day", Date: "2026-01-16", StartTime: "12:00", DurationMinutes: 45, Category: models.EventCategoryMeeting},
	}

	items := DayItems("2026-01-15", tasks, events)
	ids := make(map[string]bool)
	for _, it := range items {
		ids[it.ID] = true
	}

	if !ids["scheduled"] || !ids["linked"] || !ids["ev-2"] {
		t.Errorf("missing expected items: %v", ids)
	}
	if ids["unscheduled"] {
		t.Error("task without a scheduled time must be excluded from layout")
	}
	if ids["gev-1"] {
		t.Error("event already mirrored by a linked task must be excluded")
	}
	if ids["ev-other-day"] {
		t.Error("event on another date must be excluded")
	}
}
