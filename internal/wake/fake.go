package wake

import (
	"sync"
	"time"
)

// FakeScheduler records registrations for test assertions.
type FakeScheduler struct {
	mu sync.Mutex

	// Registrations contains every Register call in order. The last
	// entry is the only one the single-slot scheduler would honor.
	Registrations []time.Time

	// Err, if set, is returned by Register (the call is still recorded).
	Err error
}

// NewFakeScheduler creates an empty FakeScheduler.
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

// Register records the wake time.
func (f *FakeScheduler) Register(wakeAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Registrations = append(f.Registrations, wakeAt)
	return f.Err
}

// Pending returns the currently honored registration, or zero time if
// none was made.
func (f *FakeScheduler) Pending() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Registrations) == 0 {
		return time.Time{}
	}
	return f.Registrations[len(f.Registrations)-1]
}
