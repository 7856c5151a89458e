package store

import (
	"context"
	"sync"
)

// FakeStore is an in-memory Store for tests. It records writes and
// supports fault injection per operation.
type FakeStore struct {
	mu sync.Mutex

	// Values holds the current key-value pairs.
	Values map[string]string

	// SetCalls counts Set invocations per key.
	SetCalls map[string]int

	// GetError, SetError, DeleteError, if set, are returned by the
	// corresponding operation.
	GetError    error
	SetError    error
	DeleteError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		Values:   make(map[string]string),
		SetCalls: make(map[string]int),
	}
}

// Get returns the stored value or ErrNotFound.
func (f *FakeStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetError != nil {
		return "", f.GetError
	}
	v, ok := f.Values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set records the value.
func (f *FakeStore) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetCalls[key]++
	if f.SetError != nil {
		return f.SetError
	}
	f.Values[key] = value
	return nil
}

// Delete removes the key.
func (f *FakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteError != nil {
		return f.DeleteError
	}
	delete(f.Values, key)
	return nil
}

// Close marks the store as closed.
func (f *FakeStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
