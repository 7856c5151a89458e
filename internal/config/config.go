// Package config loads the prayerlockd configuration file.
// Flags in main override anything set here.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration.
type Config struct {
	// Broker is the MQTT broker address.
	Broker string

	// DBPath is the shared SQLite store, readable by the companion.
	DBPath string

	// TimetablePath is the prayer timetable JSON written by the
	// calculation layer.
	TimetablePath string

	// CompanionPath is the companion binary the wake scheduler starts.
	CompanionPath string

	// Timezone is the IANA zone for calendar-day boundaries.
	Timezone string

	// Timer is the periodic reconcile interval.
	Timer time.Duration

	// Heartbeat is the system heartbeat interval (0 disables).
	Heartbeat time.Duration

	// HTTPAddr is the status server address (empty disables).
	HTTPAddr string

	// Enforce names the platform blocking helper commands.
	Enforce EnforceConfig
}

// EnforceConfig names the blocking helper commands.
type EnforceConfig struct {
	Activate string `yaml:"activate"`
	Release  string `yaml:"release"`
	Check    string `yaml:"check"`
	Request  string `yaml:"request"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Broker:        "tcp://127.0.0.1:1883",
		DBPath:        "/var/lib/prayerlock/state.db",
		TimetablePath: "/var/lib/prayerlock/timetable.json",
		CompanionPath: "/usr/local/bin/prayerlock-companion",
		Timezone:      "Local",
		Timer:         time.Minute,
		Heartbeat:     15 * time.Minute,
		HTTPAddr:      ":8321",
		Enforce: EnforceConfig{
			Activate: "/usr/local/lib/prayerlock/enforce-activate",
			Release:  "/usr/local/lib/prayerlock/enforce-release",
			Check:    "/usr/local/lib/prayerlock/enforce-check",
			Request:  "/usr/local/lib/prayerlock/enforce-request",
		},
	}
}

// fileConfig mirrors Config with string durations, which YAML cannot
// decode into time.Duration directly.
type fileConfig struct {
	Broker        string        `yaml:"broker"`
	DBPath        string        `yaml:"db_path"`
	TimetablePath string        `yaml:"timetable_path"`
	CompanionPath string        `yaml:"companion_path"`
	Timezone      string        `yaml:"timezone"`
	Timer         string        `yaml:"timer"`
	Heartbeat     string        `yaml:"heartbeat"`
	HTTPAddr      string        `yaml:"http_addr"`
	Enforce       EnforceConfig `yaml:"enforce"`
}

// Load reads the YAML file at path over the defaults. A missing file
// is not an error — defaults (and flags) carry the configuration.
// Only keys present in the file override defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if fc.Broker != "" {
		cfg.Broker = fc.Broker
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.TimetablePath != "" {
		cfg.TimetablePath = fc.TimetablePath
	}
	if fc.CompanionPath != "" {
		cfg.CompanionPath = fc.CompanionPath
	}
	if fc.Timezone != "" {
		cfg.Timezone = fc.Timezone
	}
	if fc.Timer != "" {
		d, err := time.ParseDuration(fc.Timer)
		if err != nil {
			return cfg, fmt.Errorf("parse timer: %w", err)
		}
		cfg.Timer = d
	}
	if fc.Heartbeat != "" {
		d, err := time.ParseDuration(fc.Heartbeat)
		if err != nil {
			return cfg, fmt.Errorf("parse heartbeat: %w", err)
		}
		cfg.Heartbeat = d
	}
	if fc.HTTPAddr != "" {
		cfg.HTTPAddr = fc.HTTPAddr
	}
	if fc.Enforce.Activate != "" {
		cfg.Enforce.Activate = fc.Enforce.Activate
	}
	if fc.Enforce.Release != "" {
		cfg.Enforce.Release = fc.Enforce.Release
	}
	if fc.Enforce.Check != "" {
		cfg.Enforce.Check = fc.Enforce.Check
	}
	if fc.Enforce.Request != "" {
		cfg.Enforce.Request = fc.Enforce.Request
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
