// Package view is the calendar controller: it owns the cursor date and view
// mode, fetches visible days through the query cache, and turns completed
// gestures into backend mutations followed by targeted cache invalidation.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oakfield-health/practice-console/internal/api"
	"github.com/oakfield-health/practice-console/internal/calendar"
	"github.com/oakfield-health/practice-console/internal/forms"
	"github.com/oakfield-health/practice-console/internal/querycache"
	"github.com/oakfield-health/practice-console/internal/timewire"
	"github.com/oakfield-health/practice-console/pkg/logging"
)

// Mode selects which calendar view is on screen.
type Mode string

const (
	ModeDay   Mode = "day"
	ModeWeek  Mode = "week"
	ModeMonth Mode = "month"
)

const (
	defaultMonthSlotStartMin = 9 * 60
	defaultMonthSlotDuration = 30
)

// Calendar drives the visible calendar. It is not safe for concurrent use;
// the console runs it from a single UI loop.
type Calendar struct {
	client *api.Client
	cache  *querycache.DayEventCache
	loc    *time.Location
	cfg    calendar.GridConfig
	logger *logging.Logger

	mode         Mode
	cursor       time.Time
	slotDuration int

	day   *calendar.DayGrid
	week  *calendar.WeekView
	month *calendar.MonthView

	// OnCreateRequest fires when a gesture has produced a new slot and the
	// operator needs to fill in the rest of the appointment form.
	OnCreateRequest func(draft forms.AppointmentDraft)
	// OnMoveRequest fires when a drag-move has landed on a new slot.
	OnMoveRequest func(day time.Time, eventID string, startMin, endMin int)
	// OnEventSelected fires on a plain click on an event block.
	OnEventSelected func(ev calendar.Event)
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithDefaultDuration sets the slot length prefilled when a month-view day
// is clicked.
func WithDefaultDuration(minutes int) Option {
	return func(c *Calendar) {
		if minutes > 0 {
			c.slotDuration = minutes
		}
	}
}

// NewCalendar builds a controller centered on today in week mode.
func NewCalendar(client *api.Client, cache *querycache.DayEventCache, loc *time.Location, cfg calendar.GridConfig, logger *logging.Logger, opts ...Option) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	c := &Calendar{
		client:       client,
		cache:        cache,
		loc:          loc,
		cfg:          cfg,
		logger:       logger,
		mode:         ModeWeek,
		cursor:       timewire.Midnight(time.Now().In(loc), loc),
		slotDuration: defaultMonthSlotDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rebuild()
	return c
}

// Mode returns the active view mode.
func (c *Calendar) Mode() Mode { return c.mode }

// Cursor returns the anchor date of the visible view.
func (c *Calendar) Cursor() time.Time { return c.cursor }

// DayGrid returns the single-day grid, or nil outside day mode.
func (c *Calendar) DayGrid() *calendar.DayGrid { return c.day }

// Week returns the week view, or nil outside week mode.
func (c *Calendar) Week() *calendar.WeekView { return c.week }

// Month returns the month view, or nil outside month mode.
func (c *Calendar) Month() *calendar.MonthView { return c.month }

// SetMode switches views and loads the newly visible days.
func (c *Calendar) SetMode(ctx context.Context, mode Mode) error {
	if mode != ModeDay && mode != ModeWeek && mode != ModeMonth {
		return fmt.Errorf("view: unknown mode %q", mode)
	}
	c.mode = mode
	c.rebuild()
	return c.Load(ctx)
}

// GoTo moves the cursor to an arbitrary date and reloads.
func (c *Calendar) GoTo(ctx context.Context, day time.Time) error {
	c.cursor = timewire.Midnight(day, c.loc)
	c.rebuild()
	return c.Load(ctx)
}

// Today jumps back to the current date.
func (c *Calendar) Today(ctx context.Context) error {
	return c.GoTo(ctx, time.Now().In(c.loc))
}

// Next advances one step: a day, a week, or a month depending on mode.
func (c *Calendar) Next(ctx context.Context) error { return c.step(ctx, 1) }

// Prev steps backwards.
func (c *Calendar) Prev(ctx context.Context) error { return c.step(ctx, -1) }

func (c *Calendar) step(ctx context.Context, dir int) error {
	switch c.mode {
	case ModeDay:
		c.cursor = c.cursor.AddDate(0, 0, dir)
	case ModeWeek:
		c.cursor = c.cursor.AddDate(0, 0, 7*dir)
	case ModeMonth:
		c.cursor = c.cursor.AddDate(0, dir, 0)
	}
	c.cursor = timewire.Midnight(c.cursor, c.loc)
	c.rebuild()
	return c.Load(ctx)
}

// rebuild constructs the active view for the current cursor and rewires
// gesture callbacks. Event data is delivered separately by Load.
func (c *Calendar) rebuild() {
	c.day, c.week, c.month = nil, nil, nil
	switch c.mode {
	case ModeDay:
		grid := calendar.NewDayGrid(c.cursor, c.loc, c.cfg)
		grid.OnCreate = c.emitCreateRequest
		grid.OnMove = func(eventID string, startMin, endMin int) {
			c.emitMoveRequest(grid.Day(), eventID, startMin, endMin)
		}
		grid.OnEventClick = c.emitEventSelected
		c.day = grid
	case ModeWeek:
		week := calendar.NewWeekView(c.cursor, c.loc, c.cfg)
		week.OnCreate = c.emitCreateRequest
		week.OnMove = c.emitMoveRequest
		week.OnEventClick = func(_ time.Time, ev calendar.Event) { c.emitEventSelected(ev) }
		c.week = week
	case ModeMonth:
		month := calendar.NewMonthView(c.cursor, c.loc, defaultMonthSlotStartMin, c.slotDuration)
		month.OnDayClick = c.emitCreateRequest
		c.month = month
	}
}

func (c *Calendar) emitCreateRequest(day time.Time, startMin, endMin int) {
	if c.OnCreateRequest == nil {
		return
	}
	c.OnCreateRequest(c.DraftFor(day, startMin, endMin))
}

func (c *Calendar) emitMoveRequest(day time.Time, eventID string, startMin, endMin int) {
	if c.OnMoveRequest != nil {
		c.OnMoveRequest(day, eventID, startMin, endMin)
	}
}

func (c *Calendar) emitEventSelected(ev calendar.Event) {
	if c.OnEventSelected != nil {
		c.OnEventSelected(ev)
	}
}

// DraftFor prefills an appointment form for a slot drawn on the grid. Grid
// minutes are wall-clock positions, so they resolve via SetTime rather than
// by adding an absolute duration to midnight; on a DST transition day the
// two differ by the shifted hour.
func (c *Calendar) DraftFor(day time.Time, startMin, endMin int) forms.AppointmentDraft {
	start := timewire.SetTime(day, startMin/60, startMin%60, c.loc)
	end := timewire.SetTime(day, endMin/60, endMin%60, c.loc)
	return forms.AppointmentDraft{
		StartTime: timewire.FormatLocal(start, c.loc),
		EndTime:   timewire.FormatLocal(end, c.loc),
	}
}

// VisibleDayKeys lists the local date keys the active view needs fetched.
func (c *Calendar) VisibleDayKeys() []string {
	switch c.mode {
	case ModeDay:
		return []string{timewire.DateKey(c.cursor, c.loc)}
	case ModeWeek:
		return c.week.DayKeys()
	case ModeMonth:
		return c.month.DayKeys()
	}
	return nil
}

// Load fetches every visible day through the cache and delivers the results
// to the view. Days fetch independently; one failing day does not blank the
// others.
func (c *Calendar) Load(ctx context.Context) error {
	keys := c.VisibleDayKeys()
	results := make([][]calendar.Event, len(keys))
	errs := make([]error, len(keys))

	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			results[i], errs[i] = c.fetchDay(ctx, key)
		}(i, key)
	}
	wg.Wait()

	for i, key := range keys {
		if errs[i] != nil {
			c.logger.Warn("day fetch failed", "day", key, "error", errs[i])
			continue
		}
		c.deliver(key, results[i])
	}
	return errors.Join(errs...)
}

// DayEvents returns one day's normalized events through the cache without
// touching the visible view; exports and one-off lookups use this.
func (c *Calendar) DayEvents(ctx context.Context, dateKey string) ([]calendar.Event, error) {
	return c.fetchDay(ctx, dateKey)
}

// fetchDay returns a day's normalized events, from cache when possible.
// Malformed records are logged and dropped; one broken row never hides the
// rest of the day.
func (c *Calendar) fetchDay(ctx context.Context, dateKey string) ([]calendar.Event, error) {
	appts, ok, err := c.cache.Get(ctx, dateKey)
	if err != nil {
		c.logger.Warn("cache read failed", "day", dateKey, "error", err)
		ok = false
	}
	if !ok {
		appts, err = c.client.DayAppointments(ctx, dateKey)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Put(ctx, dateKey, appts); err != nil {
			c.logger.Warn("cache write failed", "day", dateKey, "error", err)
		}
	}
	events, rejects := calendar.NormalizeAll(appts)
	for _, rerr := range rejects {
		c.logger.Warn("dropping malformed appointment", "day", dateKey, "error", rerr)
	}
	return events, nil
}

func (c *Calendar) deliver(dateKey string, events []calendar.Event) {
	switch c.mode {
	case ModeDay:
		if c.day != nil && timewire.DateKey(c.day.Day(), c.loc) == dateKey {
			c.day.SetEvents(events)
		}
	case ModeWeek:
		c.week.SetDayEvents(dateKey, events)
	case ModeMonth:
		c.month.SetDayEvents(dateKey, events)
	}
}

// CommitCreate validates a draft, creates the appointment, and refreshes the
// affected day.
func (c *Calendar) CommitCreate(ctx context.Context, draft forms.AppointmentDraft) (*api.Appointment, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	req, err := draft.Request(c.loc)
	if err != nil {
		return nil, err
	}
	created, err := c.client.CreateAppointment(ctx, req)
	if err != nil {
		return nil, err
	}
	start, _ := timewire.ParseLocal(draft.StartTime, c.loc)
	c.refreshDays(ctx, timewire.DateKey(start, c.loc))
	return created, nil
}

// CommitMove patches only the two time fields, preserving every other field
// of the appointment, then refreshes the affected day. Like DraftFor, the
// dropped minutes are wall-clock positions and resolve via SetTime.
func (c *Calendar) CommitMove(ctx context.Context, day time.Time, eventID string, startMin, endMin int) error {
	req := api.AppointmentRequest{
		StartTime: timewire.FormatWire(timewire.SetTime(day, startMin/60, startMin%60, c.loc)),
		EndTime:   timewire.FormatWire(timewire.SetTime(day, endMin/60, endMin%60, c.loc)),
	}
	if _, err := c.client.UpdateAppointment(ctx, eventID, req); err != nil {
		return err
	}
	c.refreshDays(ctx, timewire.DateKey(day, c.loc))
	return nil
}

// Delete removes an event and refreshes its day.
func (c *Calendar) Delete(ctx context.Context, ev calendar.Event) error {
	if err := c.client.DeleteAppointment(ctx, ev.ID); err != nil {
		return err
	}
	c.refreshDays(ctx, timewire.DateKey(ev.Start, c.loc))
	return nil
}

// Refresh drops every cached day and reloads the visible view.
func (c *Calendar) Refresh(ctx context.Context) error {
	if err := c.cache.InvalidateAll(ctx); err != nil {
		c.logger.Warn("cache flush failed", "error", err)
	}
	return c.Load(ctx)
}

// refreshDays invalidates the given days and, when visible, refetches them.
func (c *Calendar) refreshDays(ctx context.Context, dateKeys ...string) {
	if err := c.cache.Invalidate(ctx, dateKeys...); err != nil {
		c.logger.Warn("cache invalidation failed", "days", dateKeys, "error", err)
	}
	visible := make(map[string]bool)
	for _, key := range c.VisibleDayKeys() {
		visible[key] = true
	}
	for _, key := range dateKeys {
		if !visible[key] {
			continue
		}
		events, err := c.fetchDay(ctx, key)
		if err != nil {
			c.logger.Warn("day refetch failed", "day", key, "error", err)
			continue
		}
		c.deliver(key, events)
	}
}
