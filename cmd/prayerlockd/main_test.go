package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/prayerlock/internal/completion"
	"github.com/sweeney/prayerlock/internal/coordinator"
	"github.com/sweeney/prayerlock/internal/enforce"
	"github.com/sweeney/prayerlock/internal/logic"
	"github.com/sweeney/prayerlock/internal/mqtt"
	"github.com/sweeney/prayerlock/internal/schedule"
	"github.com/sweeney/prayerlock/internal/status"
	"github.com/sweeney/prayerlock/internal/store"
	"github.com/sweeney/prayerlock/internal/wake"
)

// testClock is a settable clock safe to share with the loop goroutine.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type loopFixture struct {
	coord     *coordinator.Coordinator
	enforcer  *enforce.FakeAdapter
	publisher *mqtt.FakePublisher
	tracker   *status.Tracker
	clock     *testClock

	tick chan time.Time
	push chan struct{}
	fg   chan os.Signal
	sig  chan os.Signal
	done chan error
}

func newLoopFixture(t *testing.T, now time.Time) *loopFixture {
	t.Helper()
	clock := &testClock{now: now}
	enforcer := enforce.NewFakeAdapter()
	events := []logic.Event{
		{Prayer: logic.PrayerFajr, Time: time.Date(2026, 8, 29, 5, 0, 0, 0, time.UTC)},
		{Prayer: logic.PrayerDhuhr, Time: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)},
		{Prayer: logic.PrayerAsr, Time: time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)},
		{Prayer: logic.PrayerMaghrib, Time: time.Date(2026, 8, 29, 19, 0, 0, 0, time.UTC)},
		{Prayer: logic.PrayerIsha, Time: time.Date(2026, 8, 29, 21, 0, 0, 0, time.UTC)},
	}
	coord := coordinator.New(coordinator.Config{
		Provider:    schedule.NewFakeProvider(events...),
		Completions: completion.NewFakeSource(),
		Store:       store.NewFakeStore(),
		Enforcer:    enforcer,
		Scheduler:   wake.NewFakeScheduler(),
		Now:         clock.Now,
	})
	return &loopFixture{
		coord:     coord,
		enforcer:  enforcer,
		publisher: mqtt.NewFakePublisher(),
		tracker:   status.NewTracker(now, status.Config{TimerSec: 60}),
		clock:     clock,
		// Unbuffered so sends are processed in order.
		tick: make(chan time.Time),
		push: make(chan struct{}),
		fg:   make(chan os.Signal),
		sig:  make(chan os.Signal),
		done: make(chan error, 1),
	}
}

func (f *loopFixture) start(heartbeat time.Duration) {
	go func() {
		f.done <- runLoop(f.coord, f.publisher, f.publisher, f.tracker,
			heartbeat, f.clock.Now, f.tick, f.push, f.fg, f.sig)
	}()
}

func (f *loopFixture) stop(t *testing.T, s os.Signal) {
	t.Helper()
	select {
	case f.sig <- s:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not accept shutdown signal")
	}
	select {
	case err := <-f.done:
		if err != nil {
			t.Fatalf("runLoop returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after shutdown signal")
	}
}

func TestRunLoopStartupPassAndShutdown(t *testing.T) {
	f := newLoopFixture(t, time.Date(2026, 8, 29, 4, 0, 0, 0, time.UTC))
	f.start(0)
	f.stop(t, syscall.SIGTERM)

	counts := f.coord.Counts()
	if counts.Reconciles != 1 {
		t.Errorf("expected one startup reconcile, got %d", counts.Reconciles)
	}

	if len(f.publisher.SystemEvents) != 1 {
		t.Fatalf("expected one system event, got %d", len(f.publisher.SystemEvents))
	}
	event := f.publisher.SystemEvents[0]
	if event.Event != "SHUTDOWN" || event.Reason != "SIGTERM" {
		t.Errorf("unexpected shutdown event: %+v", event)
	}
	if !event.Retained {
		t.Error("shutdown event should be retained")
	}
	if !strings.Contains(string(f.publisher.SystemPayloads[0]), "SHUTDOWN") {
		t.Errorf("unexpected shutdown payload: %s", f.publisher.SystemPayloads[0])
	}
}

func TestRunLoopTimerTrigger(t *testing.T) {
	// Dhuhr already passed; the startup pass activates, the tick is a
	// no-op on top.
	f := newLoopFixture(t, time.Date(2026, 8, 29, 12, 10, 0, 0, time.UTC))
	f.start(0)

	f.tick <- f.clock.Now()
	f.stop(t, syscall.SIGTERM)

	counts := f.coord.Counts()
	if counts.Reconciles != 2 {
		t.Errorf("expected startup + timer reconciles, got %d", counts.Reconciles)
	}
	if counts.Activations != 1 {
		t.Errorf("expected one activation, got %d", counts.Activations)
	}
	if !f.enforcer.Active {
		t.Error("expected enforcement active after overdue dhuhr")
	}
}

func TestRunLoopPushAndForegroundTriggers(t *testing.T) {
	f := newLoopFixture(t, time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC))
	f.start(0)

	f.push <- struct{}{}
	f.fg <- syscall.SIGUSR1
	f.stop(t, syscall.SIGINT)

	if got := f.coord.Counts().Reconciles; got != 3 {
		t.Errorf("expected startup + push + foreground reconciles, got %d", got)
	}

	snap := f.tracker.Snapshot()
	if snap.LastTrigger != "foreground" {
		t.Errorf("expected last trigger foreground, got %s", snap.LastTrigger)
	}
	if f.publisher.SystemEvents[0].Reason != "SIGINT" {
		t.Errorf("expected SIGINT reason, got %s", f.publisher.SystemEvents[0].Reason)
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	f := newLoopFixture(t, time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC))
	f.start(10 * time.Minute)

	// First tick inside the interval: no heartbeat yet.
	f.clock.Set(time.Date(2026, 8, 29, 9, 5, 0, 0, time.UTC))
	f.tick <- f.clock.Now()

	// Second tick past the interval: one heartbeat.
	f.clock.Set(time.Date(2026, 8, 29, 9, 12, 0, 0, time.UTC))
	f.tick <- f.clock.Now()

	f.stop(t, syscall.SIGTERM)

	var heartbeats int
	for _, event := range f.publisher.SystemEvents {
		if event.Event == "HEARTBEAT" {
			heartbeats++
		}
	}
	if heartbeats != 1 {
		t.Errorf("expected exactly one heartbeat, got %d", heartbeats)
	}
}

func TestRunLoopTracksMQTTConnection(t *testing.T) {
	f := newLoopFixture(t, time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC))
	f.publisher.Connected = true
	f.start(0)

	f.tick <- f.clock.Now()
	f.stop(t, syscall.SIGTERM)

	if !f.tracker.Snapshot().MQTTConnected {
		t.Error("tracker should reflect the publisher's connection state")
	}
}

func TestLoadConfigFlagPrecedence(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "http_addr: :9000\nheartbeat: 20m\nbroker: tcp://file:1883\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// Unset flags keep the file's values.
	fs := flag.NewFlagSet("prayerlockd", flag.ContinueOnError)
	cfg, err := loadConfig(fs, []string{"-config", cfgPath})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("file http_addr not applied: %q", cfg.HTTPAddr)
	}
	if cfg.Heartbeat != 20*time.Minute {
		t.Errorf("file heartbeat not applied: %v", cfg.Heartbeat)
	}

	// Explicitly set flags win, including set-to-empty and zero.
	fs = flag.NewFlagSet("prayerlockd", flag.ContinueOnError)
	cfg, err = loadConfig(fs, []string{
		"-config", cfgPath, "-http", "", "-heartbeat", "0", "-broker", "tcp://flag:1883",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != "" {
		t.Errorf(`-http "" should disable the status server, got %q`, cfg.HTTPAddr)
	}
	if cfg.Heartbeat != 0 {
		t.Errorf("-heartbeat 0 should disable heartbeats, got %v", cfg.Heartbeat)
	}
	if cfg.Broker != "tcp://flag:1883" {
		t.Errorf("broker flag not applied: %s", cfg.Broker)
	}
}

func TestReconcileOnceRecordsErrors(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)}
	provider := schedule.NewFakeProvider()
	provider.Err = os.ErrDeadlineExceeded
	coord := coordinator.New(coordinator.Config{
		Provider:    provider,
		Completions: completion.NewFakeSource(),
		Store:       store.NewFakeStore(),
		Enforcer:    enforce.NewFakeAdapter(),
		Scheduler:   wake.NewFakeScheduler(),
		Now:         clock.Now,
	})
	tracker := status.NewTracker(clock.Now(), status.Config{})

	err := reconcileOnce(context.Background(), coord, tracker, coordinator.TriggerTimer, clock.Now)
	if err == nil {
		t.Fatal("expected schedule error to propagate")
	}
	snap := tracker.Snapshot()
	if snap.LastError == "" {
		t.Error("tracker should record the reconcile error")
	}
	if snap.LastTrigger != "timer" {
		t.Errorf("expected timer trigger recorded, got %s", snap.LastTrigger)
	}
}
