package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sweeney/prayerlock/internal/logic"
)

// timetableJSON is the on-disk timetable format: per-date clock times.
// Written by the calculation layer, e.g.:
//
//	{"2026-08-29": {"fajr": "05:12", "sunrise": "06:41", "dhuhr": "13:04",
//	                "asr": "16:39", "maghrib": "19:26", "isha": "20:48"}}
type timetableJSON map[string]map[string]string

// FileProvider reads prayer events from a JSON timetable file.
// The file is re-read on every call so the calculation layer can
// replace it without restarting the daemon.
type FileProvider struct {
	path string
	loc  *time.Location
}

// NewFileProvider creates a provider for the timetable at path.
// Clock times in the file are interpreted in loc.
func NewFileProvider(path string, loc *time.Location) *FileProvider {
	return &FileProvider{path: path, loc: loc}
}

// TodayEvents returns the events listed for date.
// A date missing from the timetable is an error — the calculation
// layer is expected to keep the file ahead of the calendar.
func (p *FileProvider) TodayEvents(date string) ([]logic.Event, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read timetable: %w", err)
	}

	var table timetableJSON
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse timetable: %w", err)
	}

	day, ok := table[date]
	if !ok {
		return nil, fmt.Errorf("timetable has no entry for %s", date)
	}

	base, err := time.ParseInLocation(logic.DateLayout, date, p.loc)
	if err != nil {
		return nil, fmt.Errorf("parse date %s: %w", date, err)
	}

	var events []logic.Event
	for name, clock := range day {
		hhmm, err := time.Parse("15:04", clock)
		if err != nil {
			return nil, fmt.Errorf("parse time %q for %s: %w", clock, name, err)
		}
		events = append(events, logic.Event{
			Prayer: logic.Prayer(name),
			Time:   base.Add(time.Duration(hhmm.Hour())*time.Hour + time.Duration(hhmm.Minute())*time.Minute),
		})
	}
	return events, nil
}
