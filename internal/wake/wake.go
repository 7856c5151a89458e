// Package wake provides the single-slot OS wake scheduler adapter.
// The scheduler holds at most one pending wake-up for the companion
// process; registering a new one replaces any previous registration.
package wake

import "time"

// Scheduler registers the companion process wake-up.
type Scheduler interface {
	// Register asks the OS to start the companion at wakeAt,
	// replacing any previously registered wake-up. There is no
	// query or cancel primitive.
	Register(wakeAt time.Time) error
}
