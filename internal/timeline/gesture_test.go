package timeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zenithflow/zenithflow/internal/models"
)

// fakeSink records gesture mutations.
type fakeSink struct {
	taskStarts    map[string]string
	eventStarts   map[string]string
	taskDurations map[string]int
	created       []models.Task
	linked        map[string]string
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		taskStarts:    make(map[string]string),
		eventStarts:   make(map[string]string),
		taskDurations: make(map[string]int),
		linked:        make(map[string]string),
	}
}

func (s *fakeSink) SetTaskStart(id, clock string)     { s.taskStarts[id] = clock }
func (s *fakeSink) SetEventStart(id, clock string)    { s.eventStarts[id] = clock }
func (s *fakeSink) SetTaskDuration(id string, m int)  { s.taskDurations[id] = m }
func (s *fakeSink) SetEventDuration(id string, m int) {}
func (s *fakeSink) CreateTask(task models.Task)       { s.created = append(s.created, task) }
func (s *fakeSink) LinkTask(id, googleEventID string) { s.linked[id] = googleEventID }

type fakeMirror struct {
	ready  bool
	id     string
	err    error
	pushes int
}

func (m *fakeMirror) Ready() bool { return m.ready }
func (m *fakeMirror) Push(_ context.Context, title, date, start string, duration int) (string, error) {
	m.pushes++
	return m.id, m.err
}

func TestGestureDragCreate(t *testing.T) {
	t.Parallel()

	sink := newFakeSink()
	g := NewGesture(DefaultWindow(), sink, nil)
	g.now = func() time.Time { return time.UnixMilli(1700000000000) }

	// 05:00-24:00 window is 1140 minutes. Drag from 25% to 40% of a 1000px
	// container: start snaps to 285 minutes past window start (09:45),
	// duration snaps to 165 minutes.
	g.BeginCreate("2026-01-15", 250, 1000)
	g.PointerMove(400)
	res := g.PointerUp(context.Background())

	if res.Created == nil {
		t.Fatal("expected a created task")
	}
	if res.Created.ScheduledTime != "09:45" {
		t.Errorf("start = %q, want 09:45", res.Created.ScheduledTime)
	}
	if res.Created.DurationMinutes != 165 {
		t.Errorf("duration = %d, want 165", res.Created.DurationMinutes)
	}
	if res.Created.Status != models.TaskStatusPlanned {
		t.Errorf("status = %q, want Planned", res.Created.Status)
	}
	if res.Created.Origin != models.TaskOriginDaily {
		t.Errorf("origin = %q, want daily", res.Created.Origin)
	}
	if res.Created.Title != "New Task" {
		t.Errorf("title = %q, want default title", res.Created.Title)
	}
	if len(sink.created) != 1 {
		t.Fatalf("sink received %d creates, want 1", len(sink.created))
	}
	if res.Clicked == nil || res.Clicked.ID != res.Created.ID {
		t.Error("a fresh task should open in the editor")
	}
}

func TestGestureCreateSnapInvariant(t *testing.T) {
	t.Parallel()

	win := DefaultWindow()

	// Arbitrary messy pointer positions; results must land on 15-minute
	// multiples relative to the window start.
	tests := []struct {
		name  string
		downY float64
		moveY float64
	}{
		{name: "small drag", downY: 137, moveY: 181},
		{name: "long drag", downY: 42.5, moveY: 733.3},
		{name: "barely a drag", downY: 500, moveY: 511},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := newFakeSink()
			g := NewGesture(win, sink, nil)
			g.BeginCreate("2026-01-15", tt.downY, 1000)
			g.PointerMove(tt.moveY)
			res := g.PointerUp(context.Background())
			if res.Created == nil {
				t.Fatal("expected a created task")
			}
			offset := win.ClockToMinutes(res.Created.ScheduledTime) - win.StartMinutes()
			if offset%SnapMinutes != 0 {
				t.Errorf("start offset %d not a multiple of %d", offset, SnapMinutes)
			}
			if res.Created.DurationMinutes%SnapMinutes != 0 || res.Created.DurationMinutes < SnapMinutes {
				t.Errorf("duration %d not snapped", res.Created.DurationMinutes)
			}
		})
	}
}

func TestGestureBareClickCreatesMinimumSlot(t *testing.T) {
	t.Parallel()

	sink := newFakeSink()
	g := NewGesture(DefaultWindow(), sink, nil)

	// Pointer-down on empty area immediately released: the initial selection
	// already spans one snap unit, so a minimum-duration task is created.
	g.BeginCreate("2026-01-15", 250, 1000)
	res := g.PointerUp(context.Background())
	if res.Created == nil {
		t.Fatal("expected a created task")
	}
	if res.Created.DurationMinutes != SnapMinutes {
		t.Errorf("duration = %d, want %d", res.Created.DurationMinutes, SnapMinutes)
	}
}

func TestGestureClickVersusDrag(t *testing.T) {
	t.Parallel()

	sink := newFakeSink()
	g := NewGesture(DefaultWindow(), sink, nil)
	ref := ItemRef{ID: "t-1"}

	// Under the 5px threshold: a click, no mutation.
	g.BeginItem(ref, ModeMove, 100, 1000, 35.0, 5.0)
	g.PointerMove(103)
	res := g.PointerUp(context.Background())
	if res.Clicked == nil || res.Clicked.ID != "t-1" {
		t.Error("sub-threshold press should report a click")
	}

	// Over the threshold: a drag, start time written continuously, no click.
	g.BeginItem(ref, ModeMove, 100, 1000, 35.0, 5.0)
	g.PointerMove(160)
	g.PointerMove(220)
	res = g.PointerUp(context.Background())
	if res.Clicked != nil {
		t.Error("drag past threshold must not report a click")
	}
	if _, ok := sink.taskStarts["t-1"]; !ok {
		t.Fatal("drag should have written the task start")
	}
	win := DefaultWindow()
	offset := win.ClockToMinutes(sink.taskStarts["t-1"]) - win.StartMinutes()
	if offset%SnapMinutes != 0 {
		t.Errorf("moved start offset %d not snapped", offset)
	}
}

func TestGestureResizeMinimumDuration(t *testing.T) {
	t.Parallel()

	sink := newFakeSink()
	win := DefaultWindow()
	g := NewGesture(win, sink, nil)

	// Resize far upward; duration clamps to one snap unit.
	g.BeginItem(ItemRef{ID: "t-2"}, ModeResize, 500, 1000, 20.0, 10.0)
	g.PointerMove(100)
	g.PointerUp(context.Background())
	if got := sink.taskDurations["t-2"]; got != SnapMinutes {
		t.Errorf("duration = %d, want clamp to %d", got, SnapMinutes)
	}
}

func TestGestureMirrorsCreatedTask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mirror     *fakeMirror
		wantLinked bool
		wantPushes int
	}{
		{name: "ready mirror links task", mirror: &fakeMirror{ready: true, id: "gev-9"}, wantLinked: true, wantPushes: 1},
		{name: "no session token skips push", mirror: &fakeMirror{ready: false, id: "gev-9"}, wantPushes: 0},
		{name: "push failure is silent", mirror: &fakeMirror{ready: true, err: errors.New("calendar down")}, wantPushes: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := newFakeSink()
			g := NewGesture(DefaultWindow(), sink, tt.mirror)
			g.BeginCreate("2026-01-15", 250, 1000)
			g.PointerMove(400)
			res := g.PointerUp(context.Background())
			if res.Created == nil {
				t.Fatal("expected a created task")
			}
			if tt.mirror.pushes != tt.wantPushes {
				t.Errorf("pushes = %d, want %d", tt.mirror.pushes, tt.wantPushes)
			}
			_, linked := sink.linked[res.Created.ID]
			if linked != tt.wantLinked {
				t.Errorf("linked = %v, want %v", linked, tt.wantLinked)
			}
		})
	}
}

func TestEditorKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key          string
		inputFocused bool
		want         EditorAction
	}{
		{key: "Enter", inputFocused: true, want: EditorActionClose},
		{key: "Delete", inputFocused: false, want: EditorActionDelete},
		{key: "Backspace", inputFocused: false, want: EditorActionDelete},
		{key: "Delete", inputFocused: true, want: EditorActionNone},
		{key: "Backspace", inputFocused: true, want: EditorActionNone},
		{key: "a", inputFocused: false, want: EditorActionNone},
	}

	for _, tt := range tests {
		if got := EditorKey(tt.key, tt.inputFocused); got != tt.want {
			t.Errorf("EditorKey(%q, %v) = %q, want %q", tt.key, tt.inputFocused, got, tt.want)
		}
	}
}

func TestIsUndoChord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key      string
		modifier bool
		shift    bool
		want     bool
	}{
		{key: "z", modifier: true, shift: false, want: true},
		{key: "Z", modifier: true, shift: false, want: true},
		{key: "z", modifier: true, shift: true, want: false}, // redo chord is not undo
		{key: "z", modifier: false, shift: false, want: false},
		{key: "y", modifier: true, shift: false, want: false},
	}

	for _, tt := range tests {
		if got := IsUndoChord(tt.key, tt.modifier, tt.shift); got != tt.want {
			t.Errorf("IsUndoChord(%q, %v, %v) = %v, want %v", tt.key, tt.modifier, tt.shift, got, tt.want)
		}
	}
}
