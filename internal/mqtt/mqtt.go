// Package mqtt provides MQTT publishing of blocking state changes and
// the push-notification trigger subscription, with abstraction for
// testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/prayerlock/internal/logic"
)

// TopicBlock is the topic for enforcement state-change events.
const TopicBlock = "prayer/lock/events"

// TopicSystem is the topic for daemon lifecycle events.
const TopicSystem = "prayer/lock/system"

// TopicReconcile is the inbound command topic. Any message delivered
// here is a push trigger: the payload is ignored, the delivery itself
// is the signal.
const TopicReconcile = "prayer/lock/reconcile"

// Publisher publishes daemon events to the broker.
type Publisher interface {
	// PublishBlock sends a blocking state-change event.
	// Returns error if publishing fails (should not crash the process).
	PublishBlock(event BlockEvent) error

	// PublishSystem sends a daemon lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// BlockEvent represents an enforcement state change.
type BlockEvent struct {
	Timestamp time.Time
	Event     string // "BLOCK_ACTIVATED" or "BLOCK_RELEASED"
	Prayer    logic.Prayer
	DueAt     time.Time // prayer time, activation only
	PassID    string    // reconciliation pass correlation id
}

// SystemEvent represents a daemon lifecycle event.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// BlockPayload is the JSON structure of a state-change message.
type BlockPayload struct {
	Lock LockPayloadInner `json:"lock"`
}

// LockPayloadInner contains the state-change details.
type LockPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Prayer    string `json:"prayer"`
	DueAt     string `json:"due_at,omitempty"`
	PassID    string `json:"pass_id"`
}

// FormatBlockPayload creates the JSON payload for a state-change event.
func FormatBlockPayload(event BlockEvent) ([]byte, error) {
	inner := LockPayloadInner{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     event.Event,
		Prayer:    string(event.Prayer),
		PassID:    event.PassID,
	}
	if !event.DueAt.IsZero() {
		inner.DueAt = event.DueAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(BlockPayload{Lock: inner})
}

// SystemPayload is the JSON structure of a lifecycle message.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}

// BlockNotifier adapts a Publisher to the coordinator's notifier
// hooks. Publish failures are swallowed: events are observability,
// not state, and the buffered publisher already retries.
type BlockNotifier struct {
	pub Publisher
	now func() time.Time
}

// NewBlockNotifier creates a notifier publishing through pub.
func NewBlockNotifier(pub Publisher, now func() time.Time) *BlockNotifier {
	if now == nil {
		now = time.Now
	}
	return &BlockNotifier{pub: pub, now: now}
}

// BlockActivated publishes a BLOCK_ACTIVATED event.
func (n *BlockNotifier) BlockActivated(passID string, prayer logic.Prayer, dueAt time.Time) {
	n.pub.PublishBlock(BlockEvent{
		Timestamp: n.now(),
		Event:     "BLOCK_ACTIVATED",
		Prayer:    prayer,
		DueAt:     dueAt,
		PassID:    passID,
	})
}

// BlockReleased publishes a BLOCK_RELEASED event.
func (n *BlockNotifier) BlockReleased(passID string, prayer logic.Prayer) {
	n.pub.PublishBlock(BlockEvent{
		Timestamp: n.now(),
		Event:     "BLOCK_RELEASED",
		Prayer:    prayer,
		PassID:    passID,
	})
}
