// Package completion provides the prayer completion record boundary.
// Completion is owned by the surrounding app (the user marks prayers
// done); the coordinator only reads it. The real implementation
// persists through the shared store so the record survives restarts
// and is visible to the companion process.
package completion

import (
	"context"

	"github.com/sweeney/prayerlock/internal/logic"
)

// Source reads and writes per-day completion states.
type Source interface {
	// Completions returns the day's states. Absent prayers are Incomplete.
	Completions(ctx context.Context, date string) (map[logic.Prayer]logic.CompletionState, error)

	// SetCompletion records the state for one prayer. The caller is
	// responsible for firing the completion trigger afterwards.
	SetCompletion(ctx context.Context, date string, prayer logic.Prayer, state logic.CompletionState) error
}
