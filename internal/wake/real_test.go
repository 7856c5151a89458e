package wake

import (
	"testing"
	"time"
)

func TestCalendarSpecCarriesExplicitZone(t *testing.T) {
	// A wake time in a configured zone three hours east of the machine
	// must still name the same absolute instant.
	loc := time.FixedZone("UTC+3", 3*3600)
	got := calendarSpec(time.Date(2026, 8, 29, 15, 0, 0, 0, loc))
	if got != "2026-08-29 12:00:00 UTC" {
		t.Errorf("expected 2026-08-29 12:00:00 UTC, got %q", got)
	}
}

func TestCalendarSpecUTCInput(t *testing.T) {
	got := calendarSpec(time.Date(2026, 8, 29, 5, 0, 0, 0, time.UTC))
	if got != "2026-08-29 05:00:00 UTC" {
		t.Errorf("unexpected spec %q", got)
	}
}
