package calendar

import (
	"testing"
	"time"

	"github.com/oakfield-health/practice-console/internal/timewire"
)

func TestStartOfISOWeek(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		day  string
		want string
	}{
		{"2025-06-15", "2025-06-09"}, // Sunday -> preceding Monday
		{"2025-06-09", "2025-06-09"}, // Monday is its own week start
		{"2025-06-11", "2025-06-09"}, // midweek
		{"2025-06-01", "2025-05-26"}, // month boundary crossed backwards
	}
	for _, tt := range tests {
		day, err := timewire.ParseDateKey(tt.day, loc)
		if err != nil {
			t.Fatalf("ParseDateKey: %v", err)
		}
		got := StartOfISOWeek(day, loc)
		if key := timewire.DateKey(got, loc); key != tt.want {
			t.Fatalf("StartOfISOWeek(%s) = %s, want %s", tt.day, key, tt.want)
		}
	}
}

func TestWeekViewDayKeys(t *testing.T) {
	loc := time.UTC
	day, _ := timewire.ParseDateKey("2025-06-11", loc)
	w := NewWeekView(day, loc, GridConfig{})

	keys := w.DayKeys()
	want := []string{"2025-06-09", "2025-06-10", "2025-06-11", "2025-06-12", "2025-06-13", "2025-06-14", "2025-06-15"}
	if len(keys) != 7 {
		t.Fatalf("expected 7 day keys, got %d", len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("key[%d] = %s, want %s", i, keys[i], want[i])
		}
	}
}

func TestWeekViewForwardsGesturesWithDay(t *testing.T) {
	loc := time.UTC
	day, _ := timewire.ParseDateKey("2025-06-09", loc)
	w := NewWeekView(day, loc, GridConfig{PixelsPerHour: pph})

	var createDay time.Time
	var createStart, createEnd int
	w.OnCreate = func(day time.Time, startMin, endMin int) {
		createDay, createStart, createEnd = day, startMin, endMin
	}

	// Draw a slot on Wednesday's column.
	wed := w.GridAt(2)
	wed.PointerDownBackground(yFor(9 * 60))
	wed.PointerMove(yFor(10 * 60))
	wed.PointerUp(yFor(10 * 60))

	if timewire.DateKey(createDay, loc) != "2025-06-11" {
		t.Fatalf("create must carry the originating day, got %s", timewire.DateKey(createDay, loc))
	}
	if createStart != 9*60 || createEnd != 10*60 {
		t.Fatalf("unexpected slot: %d-%d", createStart, createEnd)
	}

	var moveDay time.Time
	var moveID string
	w.OnMove = func(day time.Time, id string, startMin, endMin int) {
		moveDay, moveID = day, id
	}
	fri := w.GridAt(4)
	fri.SetEvents([]Event{mustEvent(t, "a1", "2025-06-13T09:00:00.000Z", "2025-06-13T09:30:00.000Z")})
	fri.PointerDownEvent(yFor(9*60), "a1")
	fri.PointerMove(yFor(12 * 60))
	fri.PointerUp(yFor(12 * 60))

	if timewire.DateKey(moveDay, loc) != "2025-06-13" || moveID != "a1" {
		t.Fatalf("move must carry the originating day, got %s/%s", timewire.DateKey(moveDay, loc), moveID)
	}
}

func TestWeekViewIndependentDayArrival(t *testing.T) {
	loc := time.UTC
	day, _ := timewire.ParseDateKey("2025-06-09", loc)
	w := NewWeekView(day, loc, GridConfig{})

	// Days resolve out of order; each renders independently.
	if !w.SetDayEvents("2025-06-13", []Event{mustEvent(t, "fri", "2025-06-13T09:00:00.000Z", "2025-06-13T10:00:00.000Z")}) {
		t.Fatal("friday is visible, delivery must succeed")
	}
	if !w.SetDayEvents("2025-06-09", []Event{mustEvent(t, "mon", "2025-06-09T09:00:00.000Z", "2025-06-09T10:00:00.000Z")}) {
		t.Fatal("monday is visible, delivery must succeed")
	}
	if len(w.GridAt(4).Events()) != 1 || len(w.GridAt(0).Events()) != 1 {
		t.Fatal("per-day buckets must fill independently")
	}
	if len(w.GridAt(1).Events()) != 0 {
		t.Fatal("undelivered day must stay empty")
	}

	// A response for a day that is no longer on screen is dropped harmlessly.
	if w.SetDayEvents("2025-07-01", nil) {
		t.Fatal("stale day delivery must be rejected")
	}
}

func mustEvent(t *testing.T, id, startWire, endWire string) Event {
	t.Helper()
	start, err := timewire.ParseWire(startWire)
	if err != nil {
		t.Fatalf("ParseWire: %v", err)
	}
	end, err := timewire.ParseWire(endWire)
	if err != nil {
		t.Fatalf("ParseWire: %v", err)
	}
	return Event{ID: id, Title: id, Start: start, End: end}
}
