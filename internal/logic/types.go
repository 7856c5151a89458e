// Package logic contains pure decision logic for prayer-time blocking.
// This package has NO external dependencies (no store, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Prayer identifies one of the five mandatory daily prayers.
// Non-mandatory events (e.g. sunrise) are never eligible for blocking.
type Prayer string

const (
	PrayerFajr    Prayer = "fajr"
	PrayerDhuhr   Prayer = "dhuhr"
	PrayerAsr     Prayer = "asr"
	PrayerMaghrib Prayer = "maghrib"
	PrayerIsha    Prayer = "isha"
)

// MandatoryPrayers lists the blocking-eligible prayers in daily order.
var MandatoryPrayers = []Prayer{PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha}

// IsMandatory reports whether p is one of the five mandatory prayers.
func IsMandatory(p Prayer) bool {
	switch p {
	case PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha:
		return true
	}
	return false
}

// Event is a single scheduled prayer for a given day.
// Immutable once produced by the schedule provider.
type Event struct {
	Prayer Prayer
	Time   time.Time
}

// CompletionState records whether the user has satisfied a prayer.
type CompletionState string

const (
	StateIncomplete CompletionState = "incomplete"
	StateCompleted  CompletionState = "completed"
	StateExcused    CompletionState = "excused"
)

// Satisfied reports whether the state counts as the prayer being done.
// Completed and Excused are treated identically for blocking purposes.
func (s CompletionState) Satisfied() bool {
	return s == StateCompleted || s == StateExcused
}

// BlockingRecord is the single piece of state shared between the host
// and companion processes. At most one exists at any time.
type BlockingRecord struct {
	Prayer              Prayer
	ActivatedAt         time.Time
	Date                string // calendar day the record belongs to, DateLayout
	Active              bool
	ReleaseOnCompletion bool
}

// DateLayout is the calendar-day format used in records and store keys.
const DateLayout = "2006-01-02"

// DateOf returns t's calendar day in t's location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// SameDay reports whether the record belongs to the calendar day of now.
// A record from a previous day is stale and must be invalidated.
func (r BlockingRecord) SameDay(now time.Time) bool {
	return r.Date == DateOf(now)
}

// Decision is the outcome of one targeting pass.
type Decision struct {
	// Target is the prayer that should currently be blocked, nil if none.
	Target *Event
	// NextWake is the earliest future mandatory event time, nil if none
	// remains today.
	NextWake *time.Time
}

// Counts tracks coordinator activity since startup.
type Counts struct {
	Reconciles  int
	Activations int
	Releases    int
}
