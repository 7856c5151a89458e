package schedule

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sweeney/prayerlock/internal/logic"
)

const sampleTimetable = `{
  "2026-08-29": {
    "fajr": "05:12",
    "sunrise": "06:41",
    "dhuhr": "13:04",
    "asr": "16:39",
    "maghrib": "19:26",
    "isha": "20:48"
  }
}`

func writeTimetable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timetable.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write timetable: %v", err)
	}
	return path
}

func TestFileProviderTodayEvents(t *testing.T) {
	path := writeTimetable(t, sampleTimetable)
	p := NewFileProvider(path, time.UTC)

	events, err := p.TodayEvents("2026-08-29")
	if err != nil {
		t.Fatalf("today events: %v", err)
	}
	if len(events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(events))
	}

	byPrayer := make(map[logic.Prayer]time.Time)
	for _, e := range events {
		byPrayer[e.Prayer] = e.Time
	}
	want := time.Date(2026, 8, 29, 5, 12, 0, 0, time.UTC)
	if !byPrayer[logic.PrayerFajr].Equal(want) {
		t.Errorf("expected fajr %v, got %v", want, byPrayer[logic.PrayerFajr])
	}
	// Sunrise appears in the timetable; filtering is the caller's job.
	if _, ok := byPrayer["sunrise"]; !ok {
		t.Error("expected sunrise entry to pass through")
	}
}

func TestFileProviderTimezone(t *testing.T) {
	path := writeTimetable(t, sampleTimetable)
	loc := time.FixedZone("UTC+3", 3*3600)
	p := NewFileProvider(path, loc)

	events, err := p.TodayEvents("2026-08-29")
	if err != nil {
		t.Fatalf("today events: %v", err)
	}
	for _, e := range events {
		if e.Prayer == logic.PrayerFajr {
			want := time.Date(2026, 8, 29, 5, 12, 0, 0, loc)
			if !e.Time.Equal(want) {
				t.Errorf("expected fajr %v, got %v", want, e.Time)
			}
		}
	}
}

func TestFileProviderMissingDate(t *testing.T) {
	path := writeTimetable(t, sampleTimetable)
	p := NewFileProvider(path, time.UTC)

	if _, err := p.TodayEvents("2026-09-01"); err == nil {
		t.Error("expected error for missing date")
	}
}

func TestFileProviderMissingFile(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "absent.json"), time.UTC)
	if _, err := p.TodayEvents("2026-08-29"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileProviderMalformed(t *testing.T) {
	path := writeTimetable(t, "{not json")
	p := NewFileProvider(path, time.UTC)
	if _, err := p.TodayEvents("2026-08-29"); err == nil {
		t.Error("expected error for malformed timetable")
	}

	path = writeTimetable(t, `{"2026-08-29": {"fajr": "5 o'clock"}}`)
	p = NewFileProvider(path, time.UTC)
	if _, err := p.TodayEvents("2026-08-29"); err == nil {
		t.Error("expected error for malformed clock time")
	}
}

func TestFileProviderRereadsFile(t *testing.T) {
	// The calculation layer may replace the file while the daemon runs.
	path := writeTimetable(t, sampleTimetable)
	p := NewFileProvider(path, time.UTC)

	if _, err := p.TodayEvents("2026-08-30"); err == nil {
		t.Fatal("expected missing date before rewrite")
	}

	updated := `{"2026-08-30": {"fajr": "05:13"}}`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite timetable: %v", err)
	}
	events, err := p.TodayEvents("2026-08-30")
	if err != nil {
		t.Fatalf("today events after rewrite: %v", err)
	}
	if len(events) != 1 || events[0].Prayer != logic.PrayerFajr {
		t.Errorf("unexpected events after rewrite: %+v", events)
	}
}
