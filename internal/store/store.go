// Package store provides the shared durable key-value store used to
// communicate between the host daemon and the companion process.
// The real implementation is a SQLite file both processes can open;
// the fake implementation allows testing without a database.
package store

import (
	"context"
	"errors"
)

// Fixed keys. At most one value exists per key; writes are
// last-writer-wins at single-key granularity.
const (
	KeyBlockingRecord  = "blocking_record"
	KeyScheduleCache   = "schedule_cache"
	KeyCompletionCache = "completion_cache"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// Store is a durable key-value store shared across process boundaries.
// Values are serialized records (JSON strings).
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes the value for key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases store resources.
	Close() error
}
