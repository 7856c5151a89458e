package web

import (
	"encoding/json"
	"time"

	"github.com/sweeney/prayerlock/internal/status"
)

// StatusJSON is the JSON representation of the daemon status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Target        string     `json:"target,omitempty"`
	BlockActive   bool       `json:"block_active"`
	NextWake      string     `json:"next_wake,omitempty"`
	Authorized    bool       `json:"authorized"`
	LastTrigger   string     `json:"last_trigger,omitempty"`
	LastReconcile string     `json:"last_reconcile,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
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

func formatJSON(snap status.Snapshot) []byte {
	sj := StatusJSON{
		Status: StatusInner{
			Target:        string(snap.Target),
			BlockActive:   snap.BlockActive,
			Authorized:    snap.Authorized,
			LastTrigger:   snap.LastTrigger,
			LastError:     snap.LastError,
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
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
		},
	}

	if snap.NextWake != nil {
		sj.Status.NextWake = snap.NextWake.UTC().Format(time.RFC3339)
	}
	if !snap.LastReconcile.IsZero() {
		sj.Status.LastReconcile = snap.LastReconcile.UTC().Format(time.RFC3339)
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}
