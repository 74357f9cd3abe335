package timewire

import (
	"errors"
	"testing"
	"time"
)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load zone %s: %v", name, err)
	}
	return loc
}

func TestToWireUTCPlusOne(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)

	got, err := ToWire("2025-06-15T09:00", loc)
	if err != nil {
		t.Fatalf("ToWire error: %v", err)
	}
	if got != "2025-06-15T08:00:00.000Z" {
		t.Fatalf("unexpected wire start: %s", got)
	}

	got, err = ToWire("2025-06-15T09:30", loc)
	if err != nil {
		t.Fatalf("ToWire error: %v", err)
	}
	if got != "2025-06-15T08:30:00.000Z" {
		t.Fatalf("unexpected wire end: %s", got)
	}
}

func TestRoundTrip(t *testing.T) {
	berlin := mustZone(t, "Europe/Berlin")
	utc := time.UTC

	tests := []struct {
		name  string
		local string
		loc   *time.Location
	}{
		{"plain summer", "2025-06-15T09:00", berlin},
		{"plain winter", "2025-01-15T23:45", berlin},
		{"before spring-forward", "2025-03-30T01:45", berlin},
		{"after spring-forward", "2025-03-30T03:15", berlin},
		{"before fall-back", "2025-10-26T01:30", berlin},
		{"after fall-back", "2025-10-26T04:00", berlin},
		{"local midnight", "2025-06-15T00:00", berlin},
		{"utc viewer", "2025-06-15T09:00", utc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, err := ToWire(tt.local, tt.loc)
			if err != nil {
				t.Fatalf("ToWire(%s): %v", tt.local, err)
			}
			back, err := FromWire(wire, tt.loc)
			if err != nil {
				t.Fatalf("FromWire(%s): %v", wire, err)
			}
			if back != tt.local {
				t.Fatalf("round trip %s -> %s -> %s", tt.local, wire, back)
			}
		})
	}
}

func TestInvalidInput(t *testing.T) {
	loc := time.UTC
	for _, bad := range []string{"", "2025-06-15", "2025-13-01T09:00", "2025-02-30T09:00", "not-a-date"} {
		if _, err := ToWire(bad, loc); err == nil {
			t.Fatalf("expected error for %q", bad)
		} else {
			var iie *InvalidInputError
			if !errors.As(err, &iie) {
				t.Fatalf("expected InvalidInputError for %q, got %T", bad, err)
			}
		}
	}
	if _, err := FromWire("2025-06-15T99:00:00.000Z", loc); err == nil {
		t.Fatal("expected error for invalid wire string")
	}
}

func TestDateKeyUsesLocalDay(t *testing.T) {
	// 23:30Z is still 18:30 on the 15th for a UTC-5 viewer; one minute after
	// the UTC day rolls over it is still the same local day.
	loc := time.FixedZone("UTC-5", -5*3600)

	before, err := ParseWire("2025-06-15T23:30:00.000Z")
	if err != nil {
		t.Fatalf("ParseWire: %v", err)
	}
	after, err := ParseWire("2025-06-16T00:30:00.000Z")
	if err != nil {
		t.Fatalf("ParseWire: %v", err)
	}

	if got := DateKey(before, loc); got != "2025-06-15" {
		t.Fatalf("expected local day 2025-06-15, got %s", got)
	}
	if got := DateKey(after, loc); got != "2025-06-15" {
		t.Fatalf("expected local day 2025-06-15 across UTC midnight, got %s", got)
	}
	if !SameLocalDay(before, after, loc) {
		t.Fatal("expected same local day across UTC midnight")
	}

	// The same instants bucket to different days for a UTC viewer.
	if DateKey(before, time.UTC) == DateKey(after, time.UTC) {
		t.Fatal("expected different UTC days")
	}
}

func TestParseDateKeyRoundTrip(t *testing.T) {
	berlin := mustZone(t, "Europe/Berlin")
	day, err := ParseDateKey("2025-03-30", berlin)
	if err != nil {
		t.Fatalf("ParseDateKey: %v", err)
	}
	if got := DateKey(day, berlin); got != "2025-03-30" {
		t.Fatalf("round trip key mismatch: %s", got)
	}
	if day.Hour() != 0 || day.Minute() != 0 {
		t.Fatalf("expected local midnight, got %s", day)
	}
	if _, err := ParseDateKey("30-03-2025", berlin); err == nil {
		t.Fatal("expected error for malformed key")
	}
}

func TestSetTimeAndMinutes(t *testing.T) {
	berlin := mustZone(t, "Europe/Berlin")
	day, _ := ParseDateKey("2025-06-15", berlin)

	at := SetTime(day, 9, 30, berlin)
	if got := MinutesSinceMidnight(at, berlin); got != 9*60+30 {
		t.Fatalf("expected 570 minutes, got %d", got)
	}
	if FormatLocal(at, berlin) != "2025-06-15T09:30" {
		t.Fatalf("unexpected local format: %s", FormatLocal(at, berlin))
	}

	shifted := AddMinutes(at, 45)
	if got := MinutesSinceMidnight(shifted, berlin); got != 10*60+15 {
		t.Fatalf("expected 615 minutes, got %d", got)
	}
}

func TestMidnight(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	instant, _ := ParseWire("2025-06-15T23:30:00.000Z")
	mid := Midnight(instant, loc)
	if mid.Hour() != 0 || mid.Minute() != 0 {
		t.Fatalf("expected midnight, got %s", mid)
	}
	if DateKey(mid, loc) != "2025-06-15" {
		t.Fatalf("expected midnight on the local day, got %s", DateKey(mid, loc))
	}
}

func TestTimeLabel(t *testing.T) {
	tests := []struct {
		mins int
		want string
	}{
		{0, "00:00"},
		{7 * 60, "07:00"},
		{9*60 + 5, "09:05"},
		{20 * 60, "20:00"},
	}
	for _, tt := range tests {
		if got := TimeLabel(tt.mins); got != tt.want {
			t.Fatalf("TimeLabel(%d) = %s, want %s", tt.mins, got, tt.want)
		}
	}
}
