package schedule

import "github.com/sweeney/prayerlock/internal/logic"

// FakeProvider serves a fixed event list for test assertions.
type FakeProvider struct {
	// Events is returned by TodayEvents for any date.
	Events []logic.Event

	// Err, if set, is returned by TodayEvents.
	Err error

	// Calls counts TodayEvents invocations.
	Calls int
}

// NewFakeProvider creates a FakeProvider serving the given events.
func NewFakeProvider(events ...logic.Event) *FakeProvider {
	return &FakeProvider{Events: events}
}

// TodayEvents returns the fixed event list.
func (f *FakeProvider) TodayEvents(date string) ([]logic.Event, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Events, nil
}
