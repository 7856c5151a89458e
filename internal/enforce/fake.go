package enforce

import (
	"sync"

	"github.com/sweeney/prayerlock/internal/logic"
)

// FakeAdapter records enforcement calls for test assertions.
type FakeAdapter struct {
	mu sync.Mutex

	// Activations contains the prayers passed to Activate, in order.
	Activations []logic.Prayer

	// ReleaseCalls counts Release invocations.
	ReleaseCalls int

	// Active mirrors what a real device would report.
	Active bool

	// Authorized controls IsAuthorized.
	Authorized bool

	// ActivateError, ReleaseError, if set, are returned by the
	// corresponding call (and the call is still recorded).
	ActivateError error
	ReleaseError  error

	// RequestResult and RequestError control RequestAuthorization.
	RequestResult bool
	RequestError  error
}

// NewFakeAdapter creates an authorized FakeAdapter.
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{Authorized: true}
}

// Activate records the call.
func (f *FakeAdapter) Activate(prayer logic.Prayer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Activations = append(f.Activations, prayer)
	if f.ActivateError != nil {
		return f.ActivateError
	}
	f.Active = true
	return nil
}

// Release records the call.
func (f *FakeAdapter) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReleaseCalls++
	if f.ReleaseError != nil {
		return f.ReleaseError
	}
	f.Active = false
	return nil
}

// IsAuthorized reports the configured authorization state.
func (f *FakeAdapter) IsAuthorized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Authorized
}

// RequestAuthorization returns the configured result.
func (f *FakeAdapter) RequestAuthorization() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RequestError != nil {
		return false, f.RequestError
	}
	f.Authorized = f.RequestResult
	return f.RequestResult, nil
}

// Reset clears recorded calls.
func (f *FakeAdapter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Activations = nil
	f.ReleaseCalls = 0
	f.Active = false
	f.ActivateError = nil
	f.ReleaseError = nil
}
