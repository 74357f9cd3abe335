package calendar

import (
	"math"
	"time"

	"github.com/oakfield-health/practice-console/internal/timewire"
)

// GridConfig sizes and tunes one day grid.
type GridConfig struct {
	StepMinutes      int
	PixelsPerHour    float64
	Window           Window
	MinBlockPx       float64
	ClickThresholdPx float64
}

func (c GridConfig) withDefaults() GridConfig {
	if c.StepMinutes <= 0 {
		c.StepMinutes = DefaultStepMinutes
	}
	if c.PixelsPerHour <= 0 {
		c.PixelsPerHour = 48
	}
	if c.Window == (Window{}) {
		c.Window = DefaultWindow()
	}
	if c.MinBlockPx <= 0 {
		c.MinBlockPx = 12
	}
	if c.ClickThresholdPx <= 0 {
		c.ClickThresholdPx = 3
	}
	return c
}

type dragKind int

const (
	dragNone dragKind = iota
	dragCreate
	dragMove
)

// dragState is the single per-grid gesture machine. It is created on pointer
// down, updated on pointer move, and consumed on pointer up; it never
// outlives one gesture.
type dragState struct {
	kind dragKind

	// create
	startMin int
	endMin   int

	// move
	eventID         string
	grabOffsetMin   int
	initialStartMin int
	currentStartMin int
	durationMin     int

	downY   float64
	maxDisp float64
}

// Block is one absolutely-positioned rectangle in the rendered grid.
type Block struct {
	EventID  string
	Title    string
	StartMin int
	EndMin   int
	TopPx    float64
	HeightPx float64
	Moving   bool
	Preview  bool
}

// DayGrid renders one day column and owns its drag state machine. Committed
// gestures are reported through the callbacks as minute-of-day pairs on the
// grid's own day; the caller converts those to wire times.
type DayGrid struct {
	day    time.Time
	loc    *time.Location
	cfg    GridConfig
	events []Event
	drag   dragState

	OnCreate     func(day time.Time, startMin, endMin int)
	OnMove       func(eventID string, startMin, endMin int)
	OnEventClick func(Event)
}

// NewDayGrid creates a grid for the local day containing day.
func NewDayGrid(day time.Time, loc *time.Location, cfg GridConfig) *DayGrid {
	if loc == nil {
		loc = time.Local
	}
	return &DayGrid{
		day: timewire.Midnight(day, loc),
		loc: loc,
		cfg: cfg.withDefaults(),
	}
}

// Day returns the grid's local midnight.
func (g *DayGrid) Day() time.Time { return g.day }

// SetEvents replaces the rendered events. Safe to call while idle only; a
// re-fetch landing mid-gesture is deferred by the caller.
func (g *DayGrid) SetEvents(events []Event) {
	g.events = events
}

// Events returns the current events.
func (g *DayGrid) Events() []Event { return g.events }

// Dragging reports whether a gesture is in progress.
func (g *DayGrid) Dragging() bool { return g.drag.kind != dragNone }

// yToMinutes quantizes a vertical pixel offset to a snapped minute of day.
// Out-of-range coordinates clamp; there is no error path.
func (g *DayGrid) yToMinutes(y float64) int {
	if y < 0 {
		y = 0
	}
	mins := PixelToMinutes(y, g.cfg.PixelsPerHour)
	limit := float64(MinutesPerDay - g.cfg.StepMinutes)
	if mins > limit {
		mins = limit
	}
	return Quantize(int(math.Round(mins)), g.cfg.StepMinutes)
}

// PointerDownBackground starts a create-by-drag gesture on empty grid space.
func (g *DayGrid) PointerDownBackground(y float64) {
	if g.drag.kind != dragNone {
		return
	}
	startMin := g.yToMinutes(y)
	g.drag = dragState{
		kind:     dragCreate,
		startMin: startMin,
		endMin:   startMin + g.cfg.StepMinutes,
		downY:    y,
	}
}

// PointerDownEvent starts a move gesture (or, if the pointer never travels,
// a click) on an existing event.
func (g *DayGrid) PointerDownEvent(y float64, eventID string) {
	if g.drag.kind != dragNone {
		return
	}
	ev, ok := g.findEvent(eventID)
	if !ok {
		return
	}
	clickMin := g.yToMinutes(y)
	startMin := timewire.MinutesSinceMidnight(ev.Start, g.loc)
	duration := int(ev.Duration().Minutes())
	g.drag = dragState{
		kind:            dragMove,
		eventID:         eventID,
		grabOffsetMin:   clickMin - startMin,
		initialStartMin: startMin,
		currentStartMin: startMin,
		durationMin:     duration,
		downY:           y,
	}
}

// PointerMove updates the in-progress gesture.
func (g *DayGrid) PointerMove(y float64) {
	switch g.drag.kind {
	case dragCreate:
		endMin := g.yToMinutes(y)
		if min := g.drag.startMin + g.cfg.StepMinutes; endMin < min {
			endMin = min
		}
		g.drag.endMin = endMin
	case dragMove:
		if disp := math.Abs(y - g.drag.downY); disp > g.drag.maxDisp {
			g.drag.maxDisp = disp
		}
		upper := g.cfg.Window.EndMin - g.drag.durationMin
		if upper < g.cfg.Window.StartMin {
			upper = g.cfg.Window.StartMin
		}
		g.drag.currentStartMin = ClampToWindow(
			g.yToMinutes(y)-g.drag.grabOffsetMin,
			g.cfg.Window.StartMin,
			upper,
		)
	}
}

// PointerUp commits the gesture: a create emission, a move emission, or a
// plain click when the pointer never left the click threshold.
func (g *DayGrid) PointerUp(y float64) {
	g.PointerMove(y)
	drag := g.drag
	g.drag = dragState{}

	switch drag.kind {
	case dragCreate:
		if drag.endMin > drag.startMin && g.OnCreate != nil {
			g.OnCreate(g.day, drag.startMin, drag.endMin)
		}
	case dragMove:
		if drag.maxDisp <= g.cfg.ClickThresholdPx {
			if ev, ok := g.findEvent(drag.eventID); ok && g.OnEventClick != nil {
				g.OnEventClick(ev)
			}
			return
		}
		if g.OnMove != nil {
			g.OnMove(drag.eventID, drag.currentStartMin, drag.currentStartMin+drag.durationMin)
		}
	}
}

// Blocks returns the rendered rectangles: one per event, the dragged event
// repositioned at its preview slot, and one preview block while creating.
func (g *DayGrid) Blocks() []Block {
	blocks := make([]Block, 0, len(g.events)+1)
	for _, ev := range g.events {
		startMin := timewire.MinutesSinceMidnight(ev.Start, g.loc)
		endMin := startMin + int(ev.Duration().Minutes())
		moving := g.drag.kind == dragMove && g.drag.eventID == ev.ID
		if moving {
			startMin = g.drag.currentStartMin
			endMin = startMin + g.drag.durationMin
		}
		blocks = append(blocks, g.block(ev.ID, ev.Title, startMin, endMin, moving, false))
	}
	if g.drag.kind == dragCreate {
		blocks = append(blocks, g.block("", "", g.drag.startMin, g.drag.endMin, false, true))
	}
	return blocks
}

func (g *DayGrid) block(id, title string, startMin, endMin int, moving, preview bool) Block {
	height := MinutesToPixel(float64(endMin-startMin), g.cfg.PixelsPerHour)
	if height < g.cfg.MinBlockPx {
		height = g.cfg.MinBlockPx
	}
	return Block{
		EventID:  id,
		Title:    title,
		StartMin: startMin,
		EndMin:   endMin,
		TopPx:    MinutesToPixel(float64(startMin), g.cfg.PixelsPerHour),
		HeightPx: height,
		Moving:   moving,
		Preview:  preview,
	}
}

func (g *DayGrid) findEvent(id string) (Event, bool) {
	for _, ev := range g.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return Event{}, false
}
