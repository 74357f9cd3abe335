// Package timewire is the single source of truth for converting between the
// three time representations the console deals with: UTC ISO-8601 wire strings
// exchanged with the backend, wall-clock "local naive" strings produced by
// date-time pickers, and time.Time instants held in memory. Every other
// package converts through these functions and never re-derives its own rule.
package timewire

import (
	"fmt"
	"time"
)

const (
	// WireLayout is the UTC ISO-8601 format the backend expects, with
	// millisecond precision: "2025-06-15T08:00:00.000Z".
	WireLayout = "2006-01-02T15:04:05.000Z07:00"

	// LocalLayout is the minute-precision wall-clock format of a
	// datetime-local picker: "2025-06-15T09:00". No zone designator.
	LocalLayout = "2006-01-02T15:04"

	// KeyLayout is the calendar-day bucket format: "2025-06-15".
	KeyLayout = "2006-01-02"
)

// InvalidInputError reports a date-time string that does not parse.
type InvalidInputError struct {
	Input string
	Err   error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("timewire: invalid date-time %q: %v", e.Input, e.Err)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

// ToWire interprets a local naive string as wall-clock time in loc and
// returns the equivalent instant as a UTC wire string.
func ToWire(localNaive string, loc *time.Location) (string, error) {
	t, err := ParseLocal(localNaive, loc)
	if err != nil {
		return "", err
	}
	return FormatWire(t), nil
}

// FromWire is the inverse of ToWire: it renders a UTC wire string as the
// local naive representation of that instant in loc.
func FromWire(wire string, loc *time.Location) (string, error) {
	t, err := ParseWire(wire)
	if err != nil {
		return "", err
	}
	return FormatLocal(t, loc), nil
}

// ParseLocal parses a "YYYY-MM-DDTHH:mm" string as wall-clock time in loc.
func ParseLocal(localNaive string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(LocalLayout, localNaive, loc)
	if err != nil {
		return time.Time{}, &InvalidInputError{Input: localNaive, Err: err}
	}
	return t, nil
}

// ParseWire parses a UTC ISO-8601 wire string into an instant.
func ParseWire(wire string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, wire)
	if err != nil {
		return time.Time{}, &InvalidInputError{Input: wire, Err: err}
	}
	return t, nil
}

// FormatWire serializes an instant as a UTC wire string.
func FormatWire(t time.Time) string {
	return t.UTC().Format(WireLayout)
}

// FormatLocal renders an instant as a minute-precision local naive string.
func FormatLocal(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(LocalLayout)
}

// DateKey buckets an instant by its LOCAL calendar day. Two instants on
// either side of midnight UTC but within the same local day share a key.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(KeyLayout)
}

// ParseDateKey returns local midnight of the day named by a date key.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(KeyLayout, key, loc)
	if err != nil {
		return time.Time{}, &InvalidInputError{Input: key, Err: err}
	}
	return t, nil
}

// Midnight returns local midnight of the day containing t.
func Midnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// SameLocalDay reports whether two instants fall on the same local calendar day.
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	return DateKey(a, loc) == DateKey(b, loc)
}

// SetTime places a wall-clock hour and minute on the local day containing day.
func SetTime(day time.Time, hours, minutes int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	ld := day.In(loc)
	return time.Date(ld.Year(), ld.Month(), ld.Day(), hours, minutes, 0, 0, loc)
}

// MinutesSinceMidnight returns the wall-clock minute of day of an instant.
func MinutesSinceMidnight(t time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return lt.Hour()*60 + lt.Minute()
}

// AddMinutes shifts an instant without mutating the input.
func AddMinutes(t time.Time, mins int) time.Time {
	return t.Add(time.Duration(mins) * time.Minute)
}

// TimeLabel formats minutes-since-midnight as an "HH:MM" axis label.
func TimeLabel(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
