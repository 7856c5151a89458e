// Package status provides a thread-safe status tracker for the
// prayerlockd daemon. It is read by HTTP handlers and heartbeats.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/prayerlock/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	TimerSec     int64
	HeartbeatMin int64
	Broker       string
	HTTPAddr     string
	DBPath       string
	Timezone     string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Target        logic.Prayer // currently blocked prayer, "" if none
	BlockActive   bool
	NextWake      *time.Time
	Authorized    bool
	Counts        logic.Counts
	LastTrigger   string
	LastReconcile time.Time
	LastError     string
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// UpdateReconcile records the outcome of a reconciliation pass.
// Called after every pass, successful or not.
func (t *Tracker) UpdateReconcile(trigger string, at time.Time, record *logic.BlockingRecord, nextWake *time.Time, counts logic.Counts, err error) {
	t.mu.Lock()
	t.snap.LastTrigger = trigger
	t.snap.LastReconcile = at
	t.snap.Counts = counts
	if err != nil {
		t.snap.LastError = err.Error()
	} else {
		t.snap.LastError = ""
		t.snap.NextWake = nextWake
		if record != nil && record.Active {
			t.snap.Target = record.Prayer
			t.snap.BlockActive = true
		} else {
			t.snap.Target = ""
			t.snap.BlockActive = false
		}
	}
	t.mu.Unlock()
}

// SetAuthorized sets the enforcement authorization state.
func (t *Tracker) SetAuthorized(authorized bool) {
	t.mu.Lock()
	t.snap.Authorized = authorized
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
