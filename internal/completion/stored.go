package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/sweeney/prayerlock/internal/logic"
	"github.com/sweeney/prayerlock/internal/store"
)

// StoredSource keeps completion state in the shared durable store
// under the completion cache key. A value for a different day is
// treated as empty — completion resets at day rollover.
type StoredSource struct {
	store store.Store
}

// NewStoredSource creates a Source backed by the given store.
func NewStoredSource(s store.Store) *StoredSource {
	return &StoredSource{store: s}
}

// Completions returns the day's states from the store.
func (s *StoredSource) Completions(ctx context.Context, date string) (map[logic.Prayer]logic.CompletionState, error) {
	value, err := s.store.Get(ctx, store.KeyCompletionCache)
	if errors.Is(err, store.ErrNotFound) {
		return map[logic.Prayer]logic.CompletionState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read completions: %w", err)
	}

	storedDate, states, err := store.ParseCompletionCache(value)
	if err != nil {
		return nil, err
	}
	if storedDate != date {
		// Previous day's record; nothing completed yet today.
		return map[logic.Prayer]logic.CompletionState{}, nil
	}
	return states, nil
}

// SetCompletion updates one prayer's state and writes the day back.
func (s *StoredSource) SetCompletion(ctx context.Context, date string, prayer logic.Prayer, state logic.CompletionState) error {
	states, err := s.Completions(ctx, date)
	if err != nil {
		return err
	}
	states[prayer] = state

	value, err := store.FormatCompletionCache(date, states)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, store.KeyCompletionCache, value); err != nil {
		return fmt.Errorf("write completions: %w", err)
	}
	return nil
}
