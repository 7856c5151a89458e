package completion

import (
	"context"
	"sync"

	"github.com/sweeney/prayerlock/internal/logic"
)

// FakeSource is an in-memory Source for tests.
type FakeSource struct {
	mu sync.Mutex

	// States maps date → prayer → state.
	States map[string]map[logic.Prayer]logic.CompletionState

	// Err, if set, is returned by both operations.
	Err error
}

// NewFakeSource creates an empty FakeSource.
func NewFakeSource() *FakeSource {
	return &FakeSource{States: make(map[string]map[logic.Prayer]logic.CompletionState)}
}

// Completions returns a copy of the day's states.
func (f *FakeSource) Completions(ctx context.Context, date string) (map[logic.Prayer]logic.CompletionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	out := make(map[logic.Prayer]logic.CompletionState)
	for p, s := range f.States[date] {
		out[p] = s
	}
	return out, nil
}

// SetCompletion records the state.
func (f *FakeSource) SetCompletion(ctx context.Context, date string, prayer logic.Prayer, state logic.CompletionState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if f.States[date] == nil {
		f.States[date] = make(map[logic.Prayer]logic.CompletionState)
	}
	f.States[date][prayer] = state
	return nil
}
