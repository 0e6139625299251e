package timeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/zenithflow/zenithflow/internal/models"
)

// Mode identifies what an in-flight pointer gesture is doing
type Mode string

const (
	ModeCreate Mode = "create"
	ModeMove   Mode = "move"
	ModeResize Mode = "resize"
)

// clickThresholdPx is the pointer travel below which a press on an item is
// treated as a click instead of a drag.
const clickThresholdPx = 5.0

// Sink receives the mutations produced by gestures. The state store
// implements it, so every drag edit flows through the same undoable setters
// as the rest of the app.
type Sink interface {
	SetTaskStart(id, clock string)
	SetEventStart(id, clock string)
	SetTaskDuration(id string, minutes int)
	SetEventDuration(id string, minutes int)
	CreateTask(task models.Task)
	LinkTask(id, googleEventID string)
}

// Mirror pushes a newly created task to the external calendar. Ready reports
// whether a usable session token is present; Push returns the remote event
// id. Push failures are swallowed by the gesture engine.
type Mirror interface {
	Ready() bool
	Push(ctx context.Context, title, date, startTime string, durationMinutes int) (string, error)
}

// ItemRef identifies the item a gesture targeted.
type ItemRef struct {
	ID      string `json:"id"`
	IsEvent bool   `json:"isEvent"`
}

// Selection is the highlighted span of an in-flight create gesture, in
// percent of the rail height.
type Selection struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Result is what a completed gesture produced.
type Result struct {
	Created *models.Task `json:"created,omitempty"` // new drag-created task, if any
	Clicked *ItemRef     `json:"clicked,omitempty"` // item to open in the editor, if any
}

// Gesture is the pointer-interaction state machine for the daily rail. All
// coordinates are pixels relative to the rail container; ContainerHeight
// converts them to percentages. A Gesture is not safe for concurrent use.
type Gesture struct {
	win    Window
	sink   Sink
	mirror Mirror
	now    func() time.Time

	active          bool
	mode            Mode
	item            ItemRef
	startY          float64
	containerHeight float64
	startTop        float64 // percent, move gestures
	startHeight     float64 // percent, resize gestures
	selectionStart  float64 // percent, create gestures
	selectionEnd    float64
	hasMoved        bool
	date            string
}

// NewGesture creates a gesture engine over the given window. mirror may be
// nil when no calendar sync is configured.
func NewGesture(win Window, sink Sink, mirror Mirror) *Gesture {
	return &Gesture{win: win, sink: sink, mirror: mirror, now: time.Now}
}

// Active reports whether a gesture is in flight.
func (g *Gesture) Active() bool { return g.active }

// CurrentSelection returns the highlighted span of an in-flight create
// gesture, or nil.
func (g *Gesture) CurrentSelection() *Selection {
	if !g.active || g.mode != ModeCreate {
		return nil
	}
	return &Selection{Start: g.selectionStart, End: g.selectionEnd}
}

func (g *Gesture) snap(percent float64) float64 {
	step := g.win.SnapStep()
	return math.Round(percent/step) * step
}

// BeginCreate starts a create-by-drag gesture from a pointer-down on empty
// rail area. y is the pointer offset within the container.
func (g *Gesture) BeginCreate(date string, y, containerHeight float64) {
	percentY := y / containerHeight * 100
	snapped := g.snap(percentY)
	*g = Gesture{
		win: g.win, sink: g.sink, mirror: g.mirror, now: g.now,
		active: true, mode: ModeCreate, date: date,
		startY: y, containerHeight: containerHeight,
		selectionStart: snapped, selectionEnd: snapped + g.win.SnapStep(),
	}
}

// BeginItem starts a move or resize gesture on an existing item. top and
// height are the item's current geometry in percent.
func (g *Gesture) BeginItem(item ItemRef, mode Mode, y, containerHeight, top, height float64) {
	*g = Gesture{
		win: g.win, sink: g.sink, mirror: g.mirror, now: g.now,
		active: true, mode: mode, item: item,
		startY: y, containerHeight: containerHeight,
		startTop: top, startHeight: height,
	}
}

// PointerMove advances the gesture. Move and resize gestures write the
// snapped result back through the sink on every call, not just on release.
func (g *Gesture) PointerMove(y float64) {
	if !g.active {
		return
	}
	deltaY := y - g.startY
	if math.Abs(deltaY) > clickThresholdPx {
		g.hasMoved = true
	}

	step := g.win.SnapStep()
	total := float64(g.win.TotalMinutes())

	if g.mode == ModeCreate {
		percentY := y / g.containerHeight * 100
		snapped := math.Max(g.selectionStart+step, g.snap(percentY))
		g.selectionEnd = snapped
		return
	}

	deltaPercent := deltaY / g.containerHeight * 100

	switch g.mode {
	case ModeMove:
		newTop := math.Max(0, g.startTop+deltaPercent)
		snappedTop := g.snap(newTop)
		startMins := int(math.Round(snappedTop/100*total)) + g.win.StartMinutes()
		clock := MinutesToClock(startMins)
		if g.item.IsEvent {
			g.sink.SetEventStart(g.item.ID, clock)
		} else {
			g.sink.SetTaskStart(g.item.ID, clock)
		}
	case ModeResize:
		newHeight := math.Max(step, g.startHeight+deltaPercent)
		snappedHeight := g.snap(newHeight)
		duration := int(math.Round(snappedHeight / 100 * total))
		if g.item.IsEvent {
			g.sink.SetEventDuration(g.item.ID, duration)
		} else {
			g.sink.SetTaskDuration(g.item.ID, duration)
		}
	}
}

// PointerUp completes the gesture. A create gesture spanning at least one
// snap unit produces a new Planned task and opportunistically mirrors it to
// the external calendar when a session token is present, tolerating silent
// failure. A press that never crossed the click threshold reports a click.
func (g *Gesture) PointerUp(ctx context.Context) Result {
	if !g.active {
		return Result{}
	}
	defer func() {
		g.active = false
		g.hasMoved = false
		g.item = ItemRef{}
	}()

	if g.mode == ModeCreate {
		total := float64(g.win.TotalMinutes())
		durationPercent := g.selectionEnd - g.selectionStart
		durationMinutes := int(math.Round(durationPercent / 100 * total))
		if durationMinutes < SnapMinutes {
			return Result{}
		}
		startMins := int(math.Round(g.selectionStart/100*total)) + g.win.StartMinutes()
		task := models.Task{
			ID:              fmt.Sprintf("task-%d", g.now().UnixMilli()),
			Title:           "New Task",
			Date:            g.date,
			Category:        models.TaskCategoryOther,
			DurationMinutes: durationMinutes,
			ScheduledTime:   MinutesToClock(startMins),
			Status:          models.TaskStatusPlanned,
			Origin:          models.TaskOriginDaily,
		}
		g.sink.CreateTask(task)

		if g.mirror != nil && g.mirror.Ready() {
			if gid, err := g.mirror.Push(ctx, task.Title, task.Date, task.ScheduledTime, task.DurationMinutes); err == nil && gid != "" {
				g.sink.LinkTask(task.ID, gid)
				task.GoogleEventID = gid
			}
		}
		return Result{Created: &task, Clicked: &ItemRef{ID: task.ID}}
	}

	if !g.hasMoved {
		item := g.item
		return Result{Clicked: &item}
	}
	return Result{}
}
