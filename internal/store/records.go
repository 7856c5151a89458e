package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/prayerlock/internal/logic"
)

// blockingRecordJSON is the serialized form of the shared blocking record.
type blockingRecordJSON struct {
	Prayer              string `json:"prayer"`
	ActivatedAt         string `json:"activated_at"`
	Date                string `json:"date"`
	Active              bool   `json:"active"`
	ReleaseOnCompletion bool   `json:"release_on_completion"`
}

// FormatBlockingRecord serializes a blocking record for the store.
func FormatBlockingRecord(r logic.BlockingRecord) (string, error) {
	data, err := json.Marshal(blockingRecordJSON{
		Prayer:              string(r.Prayer),
		ActivatedAt:         r.ActivatedAt.UTC().Format(time.RFC3339),
		Date:                r.Date,
		Active:              r.Active,
		ReleaseOnCompletion: r.ReleaseOnCompletion,
	})
	if err != nil {
		return "", fmt.Errorf("marshal blocking record: %w", err)
	}
	return string(data), nil
}

// ParseBlockingRecord deserializes a blocking record from the store.
func ParseBlockingRecord(value string) (logic.BlockingRecord, error) {
	var j blockingRecordJSON
	if err := json.Unmarshal([]byte(value), &j); err != nil {
		return logic.BlockingRecord{}, fmt.Errorf("unmarshal blocking record: %w", err)
	}
	activatedAt, err := time.Parse(time.RFC3339, j.ActivatedAt)
	if err != nil {
		return logic.BlockingRecord{}, fmt.Errorf("parse activated_at: %w", err)
	}
	return logic.BlockingRecord{
		Prayer:              logic.Prayer(j.Prayer),
		ActivatedAt:         activatedAt,
		Date:                j.Date,
		Active:              j.Active,
		ReleaseOnCompletion: j.ReleaseOnCompletion,
	}, nil
}

// scheduleCacheJSON is the serialized daily schedule. Cached so the
// companion process never needs the schedule provider.
type scheduleCacheJSON struct {
	Date   string              `json:"date"`
	Events []scheduleEventJSON `json:"events"`
}

type scheduleEventJSON struct {
	Prayer string `json:"prayer"`
	Time   string `json:"time"`
}

// FormatScheduleCache serializes today's mandatory events for the store.
func FormatScheduleCache(date string, events []logic.Event) (string, error) {
	j := scheduleCacheJSON{Date: date}
	for _, e := range events {
		j.Events = append(j.Events, scheduleEventJSON{
			Prayer: string(e.Prayer),
			Time:   e.Time.UTC().Format(time.RFC3339),
		})
	}
	data, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("marshal schedule cache: %w", err)
	}
	return string(data), nil
}

// ParseScheduleCache deserializes a cached schedule.
func ParseScheduleCache(value string) (string, []logic.Event, error) {
	var j scheduleCacheJSON
	if err := json.Unmarshal([]byte(value), &j); err != nil {
		return "", nil, fmt.Errorf("unmarshal schedule cache: %w", err)
	}
	events := make([]logic.Event, 0, len(j.Events))
	for _, e := range j.Events {
		t, err := time.Parse(time.RFC3339, e.Time)
		if err != nil {
			return "", nil, fmt.Errorf("parse event time for %s: %w", e.Prayer, err)
		}
		events = append(events, logic.Event{Prayer: logic.Prayer(e.Prayer), Time: t})
	}
	return j.Date, events, nil
}

// completionCacheJSON is the serialized completion map for one day.
// Absent prayers are incomplete.
type completionCacheJSON struct {
	Date   string            `json:"date"`
	States map[string]string `json:"states"`
}

// FormatCompletionCache serializes the day's completion states.
func FormatCompletionCache(date string, states map[logic.Prayer]logic.CompletionState) (string, error) {
	j := completionCacheJSON{Date: date, States: make(map[string]string, len(states))}
	for p, s := range states {
		j.States[string(p)] = string(s)
	}
	data, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("marshal completion cache: %w", err)
	}
	return string(data), nil
}

// ParseCompletionCache deserializes a completion map.
func ParseCompletionCache(value string) (string, map[logic.Prayer]logic.CompletionState, error) {
	var j completionCacheJSON
	if err := json.Unmarshal([]byte(value), &j); err != nil {
		return "", nil, fmt.Errorf("unmarshal completion cache: %w", err)
	}
	states := make(map[logic.Prayer]logic.CompletionState, len(j.States))
	for p, s := range j.States {
		states[logic.Prayer(p)] = logic.CompletionState(s)
	}
	return j.Date, states, nil
}
