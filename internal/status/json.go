package status

import (
	"encoding/json"
	"time"
)

// StatusEvent is the JSON payload for system events that carry a full
// status snapshot (STARTUP, SHUTDOWN, HEARTBEAT).
type StatusEvent struct {
	System StatusEventInner `json:"system"`
}

// StatusEventInner contains the event details plus the snapshot.
type StatusEventInner struct {
	Timestamp     string     `json:"timestamp"`
	Event         string     `json:"event"`
	Reason        string     `json:"reason,omitempty"`
	Target        string     `json:"target,omitempty"`
	BlockActive   bool       `json:"block_active"`
	NextWake      string     `json:"next_wake,omitempty"`
	Authorized    bool       `json:"authorized"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// CountsJSON is the JSON representation of activity counters.
type CountsJSON struct {
	Reconciles  int `json:"reconciles"`
	Activations int `json:"activations"`
	Releases    int `json:"releases"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TimerSec     int64  `json:"timer_sec"`
	HeartbeatMin int64  `json:"heartbeat_min"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
	DBPath       string `json:"db_path"`
	Timezone     string `json:"timezone"`
}

// FormatStatusEvent creates the JSON payload for a status-carrying
// system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := StatusEventInner{
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Event:         event,
		Reason:        reason,
		Target:        string(snap.Target),
		BlockActive:   snap.BlockActive,
		Authorized:    snap.Authorized,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		Counts: CountsJSON{
			Reconciles:  snap.Counts.Reconciles,
			Activations: snap.Counts.Activations,
			Releases:    snap.Counts.Releases,
		},
		Config: ConfigJSON{
			TimerSec:     snap.Config.TimerSec,
			HeartbeatMin: snap.Config.HeartbeatMin,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
			DBPath:       snap.Config.DBPath,
			Timezone:     snap.Config.Timezone,
		},
	}
	if snap.NextWake != nil {
		inner.NextWake = snap.NextWake.UTC().Format(time.RFC3339)
	}

	data, _ := json.Marshal(StatusEvent{System: inner})
	return data
}
