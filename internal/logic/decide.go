package logic

import (
	"sort"
	"time"
)

// Decide computes the blocking target and next wake time for a single
// reconciliation pass. Events may arrive unsorted and may include
// non-mandatory entries; both are handled here so callers can pass the
// provider output through unmodified.
//
// The target is the chronologically earliest mandatory event whose time
// has passed and whose completion state is not satisfied. Later overdue
// prayers remain "to make up" but never block additionally — only one
// enforcement target exists at a time.
//
// NextWake is the earliest mandatory event strictly in the future,
// regardless of completion state (a prayer completed in advance still
// needs a wake-up: the companion re-derives nothing, it only reads what
// the host last wrote, so the host wants to run at every prayer time).
func Decide(events []Event, completions map[Prayer]CompletionState, now time.Time) Decision {
	mandatory := make([]Event, 0, len(events))
	for _, e := range events {
		if IsMandatory(e.Prayer) {
			mandatory = append(mandatory, e)
		}
	}
	sort.Slice(mandatory, func(i, j int) bool {
		return mandatory[i].Time.Before(mandatory[j].Time)
	})

	var d Decision
	for i, e := range mandatory {
		if e.Time.After(now) {
			t := e.Time
			d.NextWake = &t
			break
		}
		if d.Target == nil && !completions[e.Prayer].Satisfied() {
			ev := mandatory[i]
			d.Target = &ev
		}
	}
	return d
}

// NewBlockingRecord builds the record for a freshly decided target.
func NewBlockingRecord(target Event) BlockingRecord {
	return BlockingRecord{
		Prayer:              target.Prayer,
		ActivatedAt:         target.Time,
		Date:                DateOf(target.Time),
		Active:              true,
		ReleaseOnCompletion: true,
	}
}

// RecordMatches reports whether an existing record already covers the
// decided target for the current day. A matching active record means
// the reconciliation needs no state change.
func RecordMatches(r *BlockingRecord, target *Event, now time.Time) bool {
	if r == nil || target == nil {
		return false
	}
	return r.Active && r.Prayer == target.Prayer && r.SameDay(now)
}
