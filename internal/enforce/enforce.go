// Package enforce provides the device-wide blocking adapter.
// The real implementation shells out to the platform's blocking helper;
// the fake implementation allows testing without touching the device.
package enforce

import "github.com/sweeney/prayerlock/internal/logic"

// Adapter turns device-wide blocking on and off.
//
// Both operations are idempotent: activating while already active and
// releasing while already inactive are no-op successes. The companion
// process only ever calls Activate — release is reserved for
// completion-triggered reconciliations in the host process.
type Adapter interface {
	// Activate enables blocking for the given prayer.
	Activate(prayer logic.Prayer) error

	// Release disables blocking.
	Release() error

	// IsAuthorized reports whether the user has granted the blocking
	// capability. When false the coordinator is fully inert.
	IsAuthorized() bool

	// RequestAuthorization prompts the user for the capability.
	// Returns the resulting authorization state.
	RequestAuthorization() (bool, error)
}
