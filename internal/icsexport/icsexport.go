// Package icsexport renders calendar days as iCalendar payloads so a
// schedule can be handed to an external calendar app.
package icsexport

import (
	"fmt"
	"sort"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/oakfield-health/practice-console/internal/calendar"
	"github.com/oakfield-health/practice-console/internal/timewire"
)

const productID = "-//Oakfield Health//Practice Console//EN"

// Exporter serializes normalized events to ICS.
type Exporter struct {
	// UIDDomain suffixes every VEVENT UID; defaults to the console's own.
	UIDDomain string
	now       func() time.Time
}

// New creates an exporter.
func New() *Exporter {
	return &Exporter{UIDDomain: "practice-console.oakfield.health", now: time.Now}
}

// Export serializes the given events as a single VCALENDAR. Events are
// emitted in start order regardless of input order.
func (e *Exporter) Export(events []calendar.Event) string {
	sorted := make([]calendar.Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	stamp := e.now().UTC()
	for _, ev := range sorted {
		ve := cal.AddEvent(fmt.Sprintf("%s@%s", ev.ID, e.UIDDomain))
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(ev.Start.UTC())
		ve.SetEndAt(ev.End.UTC())
		ve.SetSummary(ev.Title)
		if ev.PatientLabel != "" {
			ve.SetDescription("Patient: " + ev.PatientLabel)
		}
	}
	return cal.Serialize()
}

// ExportDay serializes one day grid's events.
func (e *Exporter) ExportDay(grid *calendar.DayGrid) string {
	return e.Export(grid.Events())
}

// ExportWeek flattens a week view into one calendar.
func (e *Exporter) ExportWeek(week *calendar.WeekView) string {
	var events []calendar.Event
	for i := 0; i < 7; i++ {
		events = append(events, week.GridAt(i).Events()...)
	}
	return e.Export(events)
}

// Filename suggests a download name for a day export.
func Filename(day time.Time, loc *time.Location) string {
	return "schedule-" + timewire.DateKey(day, loc) + ".ics"
}
