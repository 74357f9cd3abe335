// Package calendar implements the day/week/month calendar engine: slot
// arithmetic, wire-event normalization, the day-grid drag state machine, and
// the week/month aggregators. All wall-clock math goes through timewire.
package calendar

import "math"

const (
	// DefaultStepMinutes is the drag-snap granularity.
	DefaultStepMinutes = 15

	// Default working-day window.
	DefaultDayStartHour = 7
	DefaultDayEndHour   = 20

	// MinutesPerDay bounds every minute-of-day value.
	MinutesPerDay = 24 * 60
)

// Window is the visible working-day range in minutes since midnight.
type Window struct {
	StartMin int
	EndMin   int
}

// DefaultWindow returns the standard 07:00-20:00 working window.
func DefaultWindow() Window {
	return Window{StartMin: DefaultDayStartHour * 60, EndMin: DefaultDayEndHour * 60}
}

// Clamp forces a minute value into the window. Out-of-range input is always
// clamped, never rejected.
func (w Window) Clamp(mins int) int {
	return ClampToWindow(mins, w.StartMin, w.EndMin)
}

// Quantize rounds minutes to the nearest multiple of step, half up.
func Quantize(mins, step int) int {
	if step <= 0 {
		return mins
	}
	return int(math.Round(float64(mins)/float64(step))) * step
}

// ClampToWindow clamps minutes into [startMin, endMin].
func ClampToWindow(mins, startMin, endMin int) int {
	if mins < startMin {
		return startMin
	}
	if mins > endMin {
		return endMin
	}
	return mins
}

// PixelToMinutes maps a vertical pixel offset to minutes since midnight.
// Exact inverse of MinutesToPixel.
func PixelToMinutes(px, pixelsPerHour float64) float64 {
	return px / pixelsPerHour * 60
}

// MinutesToPixel maps minutes since midnight to a vertical pixel offset.
func MinutesToPixel(mins, pixelsPerHour float64) float64 {
	return mins / 60 * pixelsPerHour
}
