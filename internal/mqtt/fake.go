package mqtt

import "sync"

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// BlockEvents contains all state-change events that were published.
	BlockEvents []BlockEvent

	// BlockPayloads contains the JSON payloads that were published.
	BlockPayloads [][]byte

	// SystemEvents contains all lifecycle events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for lifecycle events.
	SystemPayloads [][]byte

	// PublishBlockError, if set, will be returned by PublishBlock.
	PublishBlockError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishBlock records the state-change event.
func (f *FakePublisher) PublishBlock(event BlockEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishBlockError != nil {
		return f.PublishBlockError
	}

	f.BlockEvents = append(f.BlockEvents, event)

	payload, err := FormatBlockPayload(event)
	if err != nil {
		return err
	}
	f.BlockPayloads = append(f.BlockPayloads, payload)

	return nil
}

// PublishSystem records the lifecycle event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BlockEvents = nil
	f.BlockPayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishBlockError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
