package calendar

import (
	"time"

	"github.com/oakfield-health/practice-console/internal/timewire"
)

// StartOfISOWeek returns local midnight of the Monday on or before t.
func StartOfISOWeek(t time.Time, loc *time.Location) time.Time {
	mid := timewire.Midnight(t, loc)
	offset := (int(mid.Weekday()) + 6) % 7
	return mid.AddDate(0, 0, -offset)
}

// WeekView composes seven day grids. Each day fetches independently by date
// key and may arrive out of order; gestures bubble up with the originating
// day attached so the caller knows which cache entry to invalidate.
type WeekView struct {
	start time.Time
	loc   *time.Location
	grids [7]*DayGrid

	OnCreate     func(day time.Time, startMin, endMin int)
	OnMove       func(day time.Time, eventID string, startMin, endMin int)
	OnEventClick func(day time.Time, ev Event)
}

// NewWeekView builds a view of the week starting at the Monday on or before
// weekStart.
func NewWeekView(weekStart time.Time, loc *time.Location, cfg GridConfig) *WeekView {
	if loc == nil {
		loc = time.Local
	}
	w := &WeekView{
		start: StartOfISOWeek(weekStart, loc),
		loc:   loc,
	}
	for i := range w.grids {
		day := w.start.AddDate(0, 0, i)
		grid := NewDayGrid(day, loc, cfg)
		grid.OnCreate = func(day time.Time, startMin, endMin int) {
			if w.OnCreate != nil {
				w.OnCreate(day, startMin, endMin)
			}
		}
		grid.OnMove = func(eventID string, startMin, endMin int) {
			if w.OnMove != nil {
				w.OnMove(grid.Day(), eventID, startMin, endMin)
			}
		}
		grid.OnEventClick = func(ev Event) {
			if w.OnEventClick != nil {
				w.OnEventClick(grid.Day(), ev)
			}
		}
		w.grids[i] = grid
	}
	return w
}

// Start returns the week's Monday.
func (w *WeekView) Start() time.Time { return w.start }

// Days returns the seven visible days.
func (w *WeekView) Days() []time.Time {
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = w.start.AddDate(0, 0, i)
	}
	return days
}

// DayKeys returns the date keys the view needs fetched.
func (w *WeekView) DayKeys() []string {
	keys := make([]string, 7)
	for i, day := range w.Days() {
		keys[i] = timewire.DateKey(day, w.loc)
	}
	return keys
}

// Grid returns the grid for a visible day, or nil when the day is off-screen.
func (w *WeekView) Grid(day time.Time) *DayGrid {
	key := timewire.DateKey(day, w.loc)
	for _, g := range w.grids {
		if timewire.DateKey(g.Day(), w.loc) == key {
			return g
		}
	}
	return nil
}

// GridAt returns the i-th day column.
func (w *WeekView) GridAt(i int) *DayGrid { return w.grids[i] }

// SetDayEvents delivers one day's fetch result. A result for a day no longer
// visible is reported as false and dropped; stale responses never corrupt the
// active view.
func (w *WeekView) SetDayEvents(dateKey string, events []Event) bool {
	for _, g := range w.grids {
		if timewire.DateKey(g.Day(), w.loc) == dateKey {
			g.SetEvents(events)
			return true
		}
	}
	return false
}
