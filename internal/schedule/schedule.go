// Package schedule provides the daily prayer timetable boundary.
// The real implementation reads a timetable file produced by the
// astronomy/calculation layer; the fake allows testing without one.
package schedule

import "github.com/sweeney/prayerlock/internal/logic"

// Provider supplies the ordered prayer events for a calendar day.
// Read-only; called once per reconciliation.
type Provider interface {
	// TodayEvents returns the events for the given day (logic.DateLayout).
	// The result may include non-mandatory entries; callers filter.
	TodayEvents(date string) ([]logic.Event, error)
}
