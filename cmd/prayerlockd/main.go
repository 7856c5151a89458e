// Command prayerlockd decides whether prayer-time blocking should be
// active and keeps that decision consistent with the OS-scheduled
// companion process through a shared SQLite store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/prayerlock/internal/completion"
	"github.com/sweeney/prayerlock/internal/config"
	"github.com/sweeney/prayerlock/internal/coordinator"
	"github.com/sweeney/prayerlock/internal/enforce"
	"github.com/sweeney/prayerlock/internal/mqtt"
	"github.com/sweeney/prayerlock/internal/schedule"
	"github.com/sweeney/prayerlock/internal/status"
	"github.com/sweeney/prayerlock/internal/store"
	"github.com/sweeney/prayerlock/internal/wake"
	"github.com/sweeney/prayerlock/internal/web"
)

func main() {
	cfg, err := loadConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// loadConfig parses flags and merges them over the config file.
// Explicitly-set flags win, including set-to-empty: `-http ""`
// disables the status server and `-heartbeat 0` disables heartbeats.
func loadConfig(fs *flag.FlagSet, args []string) (config.Config, error) {
	configPath := fs.String("config", "/etc/prayerlock/config.yaml", "Config file path")
	broker := fs.String("broker", "", "MQTT broker address (overrides config)")
	dbPath := fs.String("db", "", "Shared SQLite store path (overrides config)")
	timetable := fs.String("timetable", "", "Timetable JSON path (overrides config)")
	timer := fs.Duration("timer", 0, "Periodic reconcile interval (overrides config)")
	heartbeat := fs.Duration("heartbeat", 0, "Heartbeat interval, 0 to disable (overrides config)")
	httpAddr := fs.String("http", "", "HTTP status address, empty to disable (overrides config)")
	tz := fs.String("tz", "", "IANA timezone for day boundaries (overrides config)")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return cfg, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if *broker != "" {
		cfg.Broker = *broker
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *timetable != "" {
		cfg.TimetablePath = *timetable
	}
	if *timer > 0 {
		cfg.Timer = *timer
	}
	if set["heartbeat"] {
		cfg.Heartbeat = *heartbeat
	}
	if set["http"] {
		cfg.HTTPAddr = *httpAddr
	}
	if *tz != "" {
		cfg.Timezone = *tz
	}
	return cfg, nil
}

func run(cfg config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	now := func() time.Time { return time.Now().In(loc) }

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open shared store: %w", err)
	}
	defer st.Close()

	publisher, err := mqtt.NewRealPublisher(cfg.Broker)
	if err != nil {
		return fmt.Errorf("connect mqtt: %w", err)
	}
	defer publisher.Close()

	enforcer := enforce.NewRealAdapter(enforce.HelperConfig{
		Activate: cfg.Enforce.Activate,
		Release:  cfg.Enforce.Release,
		Check:    cfg.Enforce.Check,
		Request:  cfg.Enforce.Request,
	})

	// One-time authorization prompt; if declined the coordinator runs
	// fully inert until the user acts.
	if !enforcer.IsAuthorized() {
		granted, err := enforcer.RequestAuthorization()
		if err != nil {
			log.Printf("authorization request failed: %v", err)
		} else if !granted {
			log.Printf("blocking capability not granted; enforcement disabled")
		}
	}

	coord := coordinator.New(coordinator.Config{
		Provider:    schedule.NewFileProvider(cfg.TimetablePath, loc),
		Completions: completion.NewStoredSource(st),
		Store:       st,
		Enforcer:    enforcer,
		Scheduler:   wake.NewRealScheduler(cfg.CompanionPath, "-db", cfg.DBPath),
		Notifier:    mqtt.NewBlockNotifier(publisher, now),
		Now:         now,
	})

	tracker := status.NewTracker(now(), status.Config{
		TimerSec:     int64(cfg.Timer.Seconds()),
		HeartbeatMin: int64(cfg.Heartbeat.Minutes()),
		Broker:       cfg.Broker,
		HTTPAddr:     cfg.HTTPAddr,
		DBPath:       cfg.DBPath,
		Timezone:     cfg.Timezone,
	})
	tracker.SetAuthorized(enforcer.IsAuthorized())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Push trigger: any message on the reconcile topic.
	push := make(chan struct{}, 1)
	if err := publisher.SubscribeReconcile(func() {
		select {
		case push <- struct{}{}:
		default: // a pending push already coalesces this one
		}
	}); err != nil {
		log.Printf("reconcile subscription failed: %v", err)
	}

	// Start HTTP status/control server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, completion.NewStoredSource(st), func(ctx context.Context) error {
			return reconcileOnce(ctx, coord, tracker, coordinator.TriggerCompletion, now)
		}, now)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: timer=%v heartbeat=%v broker=%s db=%s", cfg.Timer, cfg.Heartbeat, cfg.Broker, cfg.DBPath)

	ticker := time.NewTicker(cfg.Timer)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fgCh := make(chan os.Signal, 1)
	signal.Notify(fgCh, syscall.SIGUSR1)

	return runLoop(coord, publisher, publisher, tracker, cfg.Heartbeat, now, ticker.C, push, fgCh, sigCh)
}

// runLoop drives the trigger sources: the periodic timer, push
// messages, and foreground signals. Completion triggers arrive through
// the web handler, which calls the coordinator directly.
func runLoop(coord *coordinator.Coordinator, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, push <-chan struct{}, fg <-chan os.Signal, sig <-chan os.Signal) error {
	ctx := context.Background()

	// Initial pass so a block missed while the daemon was down is
	// re-applied immediately.
	reconcileOnce(ctx, coord, tracker, coordinator.TriggerStartup, now)

	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			snap := tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			reconcileOnce(ctx, coord, tracker, coordinator.TriggerTimer, now)

		case <-push:
			reconcileOnce(ctx, coord, tracker, coordinator.TriggerPush, now)

		case <-fg:
			log.Printf("foreground signal received")
			reconcileOnce(ctx, coord, tracker, coordinator.TriggerForeground, now)
		}

		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}

		// Check for heartbeat
		t := now()
		if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
			lastHeartbeat = t
			snap := tracker.Snapshot()
			counts := snap.Counts
			log.Printf("heartbeat: uptime=%v reconciles=%d activations=%d releases=%d",
				snap.Uptime().Truncate(time.Second), counts.Reconciles, counts.Activations, counts.Releases)

			hbEvent := mqtt.SystemEvent{
				Timestamp:  t,
				Event:      "HEARTBEAT",
				RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}
	}
}

// reconcileOnce runs one pass and records the outcome on the tracker.
// Errors are logged, not returned — every failure class recovers by
// waiting for the next trigger.
func reconcileOnce(ctx context.Context, coord *coordinator.Coordinator, tracker *status.Tracker, trigger coordinator.Trigger, now func() time.Time) error {
	result, err := coord.Reconcile(ctx, trigger)
	tracker.UpdateReconcile(string(trigger), now(), result.Record, result.NextWake, coord.Counts(), err)
	if err != nil {
		log.Printf("reconcile (%s) failed: %v", trigger, err)
		return err
	}
	return nil
}
