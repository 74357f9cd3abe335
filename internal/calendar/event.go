package calendar

import (
	"fmt"
	"time"

	"github.com/oakfield-health/practice-console/internal/api"
	"github.com/oakfield-health/practice-console/internal/timewire"
)

// Event is the in-memory calendar event model. Instances are rebuilt from the
// wire response on every fetch and never mutated in place; a persisted change
// always round-trips through the backend.
type Event struct {
	ID           string
	Title        string
	Start        time.Time
	End          time.Time
	PatientID    string
	PatientLabel string
	Fee          *float64
}

// Duration returns the event length.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// MalformedEventError reports a wire event that fails normalization
// invariants. The caller decides whether to drop the event or surface a
// warning; normalization never silently accepts a degenerate event.
type MalformedEventError struct {
	ID     string
	Reason string
	Err    error
}

func (e *MalformedEventError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calendar: malformed event %s: %s: %v", e.ID, e.Reason, e.Err)
	}
	return fmt.Sprintf("calendar: malformed event %s: %s", e.ID, e.Reason)
}

func (e *MalformedEventError) Unwrap() error { return e.Err }

// Normalize converts a wire appointment into an Event with real instants.
// Fails when either timestamp does not parse or when end <= start.
func Normalize(w api.Appointment) (Event, error) {
	start, err := timewire.ParseWire(w.StartTime)
	if err != nil {
		return Event{}, &MalformedEventError{ID: w.ID, Reason: "bad startTime", Err: err}
	}
	end, err := timewire.ParseWire(w.EndTime)
	if err != nil {
		return Event{}, &MalformedEventError{ID: w.ID, Reason: "bad endTime", Err: err}
	}
	if !end.After(start) {
		return Event{}, &MalformedEventError{ID: w.ID, Reason: "end not after start"}
	}

	ev := Event{
		ID:    w.ID,
		Title: w.Title,
		Start: start,
		End:   end,
		Fee:   w.Fee,
	}
	if w.Patient != nil {
		ev.PatientID = w.Patient.ID
		ev.PatientLabel = w.Patient.DisplayLabel()
	} else {
		ev.PatientID = w.PatientID
		ev.PatientLabel = w.PatientFullName
	}
	return ev, nil
}

// NormalizeAll converts a day's wire response, returning the well-formed
// events plus one error per rejected record.
func NormalizeAll(wire []api.Appointment) ([]Event, []error) {
	events := make([]Event, 0, len(wire))
	var errs []error
	for _, w := range wire {
		ev, err := Normalize(w)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, ev)
	}
	return events, errs
}
