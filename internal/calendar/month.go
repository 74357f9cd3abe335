package calendar

import (
	"time"

	"github.com/oakfield-health/practice-console/internal/timewire"
)

// monthRows is fixed at six so the grid always shows complete weeks.
const monthRows = 6

// MonthView holds a 6x7 date matrix anchored at the Monday on or before the
// first of the month, with one event bucket per visible date (including days
// from adjacent months). Clicking a day switches the caller into day view
// with a default slot pre-selected.
type MonthView struct {
	first   time.Time
	loc     *time.Location
	days    [monthRows * 7]time.Time
	buckets map[string][]Event

	defaultStartMin    int
	defaultDurationMin int

	OnDayClick func(day time.Time, startMin, endMin int)
}

// NewMonthView builds a view of the month containing anyDay.
func NewMonthView(anyDay time.Time, loc *time.Location, defaultStartMin, defaultDurationMin int) *MonthView {
	if loc == nil {
		loc = time.Local
	}
	if defaultStartMin <= 0 {
		defaultStartMin = 9 * 60
	}
	if defaultDurationMin <= 0 {
		defaultDurationMin = 30
	}
	mid := timewire.Midnight(anyDay, loc)
	first := time.Date(mid.Year(), mid.Month(), 1, 0, 0, 0, 0, loc)
	m := &MonthView{
		first:              first,
		loc:                loc,
		buckets:            make(map[string][]Event),
		defaultStartMin:    defaultStartMin,
		defaultDurationMin: defaultDurationMin,
	}
	gridStart := StartOfISOWeek(first, loc)
	for i := range m.days {
		m.days[i] = gridStart.AddDate(0, 0, i)
	}
	return m
}

// First returns local midnight of the first of the month.
func (m *MonthView) First() time.Time { return m.first }

// Weeks returns the matrix as six rows of seven days. Every cell is unique
// by construction, so a date never appears in two buckets.
func (m *MonthView) Weeks() [][]time.Time {
	weeks := make([][]time.Time, monthRows)
	for r := range weeks {
		weeks[r] = make([]time.Time, 7)
		copy(weeks[r], m.days[r*7:r*7+7])
	}
	return weeks
}

// VisibleDays returns all 42 visible dates in order.
func (m *MonthView) VisibleDays() []time.Time {
	days := make([]time.Time, len(m.days))
	copy(days, m.days[:])
	return days
}

// DayKeys returns the date keys the view needs fetched.
func (m *MonthView) DayKeys() []string {
	keys := make([]string, len(m.days))
	for i, day := range m.days {
		keys[i] = timewire.DateKey(day, m.loc)
	}
	return keys
}

// InMonth reports whether a visible day belongs to the anchor month, as
// opposed to the leading/trailing days of adjacent months.
func (m *MonthView) InMonth(day time.Time) bool {
	ld := day.In(m.loc)
	return ld.Year() == m.first.Year() && ld.Month() == m.first.Month()
}

// SetDayEvents delivers one day's fetch result into its bucket. A result for
// a date outside the matrix is reported as false and dropped.
func (m *MonthView) SetDayEvents(dateKey string, events []Event) bool {
	if !m.visible(dateKey) {
		return false
	}
	m.buckets[dateKey] = events
	return true
}

// EventsOn returns the bucket for a visible day; empty until its fetch lands.
func (m *MonthView) EventsOn(day time.Time) []Event {
	return m.buckets[timewire.DateKey(day, m.loc)]
}

// ClickDay emits the day-view switch with the default slot pre-selected.
func (m *MonthView) ClickDay(day time.Time) {
	if m.OnDayClick == nil {
		return
	}
	m.OnDayClick(timewire.Midnight(day, m.loc), m.defaultStartMin, m.defaultStartMin+m.defaultDurationMin)
}

func (m *MonthView) visible(dateKey string) bool {
	for _, day := range m.days {
		if timewire.DateKey(day, m.loc) == dateKey {
			return true
		}
	}
	return false
}
