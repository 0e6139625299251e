package timeline

import (
	"sort"

	"github.com/zenithflow/zenithflow/internal/models"
)

// ItemKind distinguishes timeline items by source collection
type ItemKind string

const (
	ItemKindTask  ItemKind = "task"
	ItemKindEvent ItemKind = "event"
)

// Item is one entry on the daily rail: a scheduled task or a calendar event
// flattened to the fields layout needs.
type Item struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	StartTime       string            `json:"startTime"` // HH:MM
	DurationMinutes int               `json:"durationMinutes"`
	Kind            ItemKind          `json:"kind"`
	Category        string            `json:"type"`
	Status          models.TaskStatus `json:"status,omitempty"`
	GoogleEventID   string            `json:"googleEventId,omitempty"`
}

// Box is the computed geometry for one item. Top, Height, Left, and Width are
// percentages of the rail; Left and Width are relative to the track.
type Box struct {
	Item   Item    `json:"item"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Column int     `json:"column"`
	ZIndex int     `json:"zIndex"`
}

// DayItems collects the items eligible for layout on one date: tasks with a
// scheduled time, plus events not already mirrored by a linked task. Tasks
// without a scheduled time are excluded entirely.
func DayItems(date string, tasks []models.Task, events []models.CalendarEvent) []Item {
	linked := make(map[string]bool)
	var items []Item
	for _, t := range tasks {
		if t.Date != date || t.ScheduledTime == "" {
			continue
		}
		if t.GoogleEventID != "" {
			linked[t.GoogleEventID] = true
		}
		items = append(items, Item{
			ID:              t.ID,
			Title:           t.Title,
			StartTime:       t.ScheduledTime,
			DurationMinutes: t.DurationMinutes,
			Kind:            ItemKindTask,
			Category:        string(t.Category),
			Status:          t.Status,
			GoogleEventID:   t.GoogleEventID,
		})
	}
	for _, e := range events {
		if e.Date != date || linked[e.ID] {
			continue
		}
		items = append(items, Item{
			ID:              e.ID,
			Title:           e.Title,
			StartTime:       e.StartTime,
			DurationMinutes: e.DurationMinutes,
			Kind:            ItemKindEvent,
			Category:        string(e.Category),
			GoogleEventID:   e.GoogleEventID,
		})
	}
	return items
}

// Layout assigns every item a non-overlapping box. Items are sorted by start
// time, grouped into maximal transitive-overlap clusters, then packed into
// columns with a greedy first-fit pass inside each cluster. The greedy pass is
// deterministic but not guaranteed to minimize column count for complex
// overlap patterns; that behavior is load-bearing and kept as-is.
func (w Window) Layout(items []Item) []Box {
	if len(items) == 0 {
		return nil
	}

	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return w.ClockToMinutes(sorted[i].StartTime) < w.ClockToMinutes(sorted[j].StartTime)
	})

	// An item joins the first cluster containing any member whose [start, end)
	// interval intersects its own. With start-sorted input at most one cluster
	// can span any given instant, so this produces the maximal connected
	// overlap groups.
	var clusters [][]Item
	for _, item := range sorted {
		itemStart := w.ClockToMinutes(item.StartTime)
		itemEnd := itemStart + item.DurationMinutes

		joined := false
		for ci := range clusters {
			for _, existing := range clusters[ci] {
				exStart := w.ClockToMinutes(existing.StartTime)
				exEnd := exStart + existing.DurationMinutes
				if itemStart < exEnd && itemEnd > exStart {
					clusters[ci] = append(clusters[ci], item)
					joined = true
					break
				}
			}
			if joined {
				break
			}
		}
		if !joined {
			clusters = append(clusters, []Item{item})
		}
	}

	total := float64(w.TotalMinutes())
	winStart := w.StartMinutes()

	var boxes []Box
	for _, cluster := range clusters {
		// Greedy first-fit: an item takes the first column whose last-placed
		// item has ended by the item's start, else opens a new column.
		type colEnd struct{ end int }
		var columns []colEnd
		colOf := make([]int, len(cluster))
		for i, item := range cluster {
			itemStart := w.ClockToMinutes(item.StartTime)
			placed := -1
			for ci, col := range columns {
				if col.end <= itemStart {
					placed = ci
					break
				}
			}
			if placed == -1 {
				columns = append(columns, colEnd{end: itemStart + item.DurationMinutes})
				placed = len(columns) - 1
			} else {
				columns[placed].end = itemStart + item.DurationMinutes
			}
			colOf[i] = placed
		}

		width := w.TrackWidth / float64(len(columns))
		for i, item := range cluster {
			start := w.ClockToMinutes(item.StartTime)
			boxes = append(boxes, Box{
				Item:   item,
				Top:    float64(start-winStart) / total * 100,
				Height: float64(item.DurationMinutes) / total * 100,
				Left:   float64(colOf[i]) * width,
				Width:  width,
				Column: colOf[i],
				ZIndex: 30 + colOf[i],
			})
		}
	}
	return boxes
}
