// Package coordinator implements the prayer-blocking reconciliation
// routine. All trigger sources funnel into the single Reconcile entry
// point, which re-derives enforcement state from fresh reads every
// pass and is safe to call arbitrarily often.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/prayerlock/internal/completion"
	"github.com/sweeney/prayerlock/internal/enforce"
	"github.com/sweeney/prayerlock/internal/logic"
	"github.com/sweeney/prayerlock/internal/schedule"
	"github.com/sweeney/prayerlock/internal/store"
	"github.com/sweeney/prayerlock/internal/wake"
)

// Trigger identifies which source caused a reconciliation. The logic
// is identical for all of them; the trigger only appears in logs and
// published events.
type Trigger string

const (
	// TriggerPush is a reconcile-command message from the broker.
	TriggerPush Trigger = "push"
	// TriggerTimer is the periodic backstop tick.
	TriggerTimer Trigger = "timer"
	// TriggerForeground is the app-visible signal from the UI layer.
	TriggerForeground Trigger = "foreground"
	// TriggerCompletion is a completion toggle; it must run
	// synchronously with the toggle so release is immediate.
	TriggerCompletion Trigger = "completion"
	// TriggerStartup is the initial pass when the daemon starts.
	TriggerStartup Trigger = "startup"
)

// Sentinel errors per failure class. All are recovered by letting the
// next trigger retry; none should crash the daemon.
var (
	ErrScheduleUnavailable = errors.New("schedule unavailable")
	ErrStoreUnavailable    = errors.New("shared store unavailable")
	ErrEnforcement         = errors.New("enforcement adapter failed")
)

// Result is the outcome of one reconciliation pass.
type Result struct {
	// Record is the blocking record as left in the shared store,
	// nil if none exists (or it was cleared).
	Record *logic.BlockingRecord
	// NextWake is the registered companion wake time, nil if no
	// mandatory event remains today.
	NextWake *time.Time
}

// Notifier receives enforcement state changes, e.g. for MQTT
// publishing. Implementations must not call back into the coordinator.
type Notifier interface {
	BlockActivated(passID string, prayer logic.Prayer, activatedAt time.Time)
	BlockReleased(passID string, prayer logic.Prayer)
}

// Config carries the coordinator's dependencies. Everything is
// injected so tests can substitute fakes.
type Config struct {
	Provider    schedule.Provider
	Completions completion.Source
	Store       store.Store
	Enforcer    enforce.Adapter
	Scheduler   wake.Scheduler
	Notifier    Notifier         // optional
	Now         func() time.Time // defaults to time.Now
}

// Coordinator serializes reconciliation passes and owns the decision
// of whether device-wide blocking should currently be active.
type Coordinator struct {
	mu  sync.Mutex
	cfg Config

	counts logic.Counts
}

// New creates a Coordinator from the given dependencies.
func New(cfg Config) *Coordinator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Coordinator{cfg: cfg}
}

// Reconcile runs one full decision pass: fresh reads of schedule,
// completion and shared-store state, then the minimal set of
// idempotent writes and adapter calls to converge on the correct
// enforcement state, then wake re-registration.
//
// Passes are serialized: a concurrent trigger blocks until the
// in-flight pass finishes, then observes the latest inputs itself.
func (c *Coordinator) Reconcile(ctx context.Context, trigger Trigger) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.cfg.Now()
	date := logic.DateOf(now)
	passID := uuid.NewString()[:8]
	c.counts.Reconciles++

	log.Printf("reconcile [%s] trigger=%s date=%s", passID, trigger, date)

	current, err := c.readRecord(ctx, passID)
	if err != nil {
		return Result{}, err
	}

	// Unauthorized: the feature is fully inert. Clear any leftover
	// record so the companion cannot re-activate, but never touch the
	// adapter (it may be uncallable without the capability).
	if !c.cfg.Enforcer.IsAuthorized() {
		if current != nil {
			if err := c.cfg.Store.Delete(ctx, store.KeyBlockingRecord); err != nil {
				return Result{}, fmt.Errorf("%w: clear record: %v", ErrStoreUnavailable, err)
			}
			log.Printf("reconcile [%s] unauthorized, cleared record for %s", passID, current.Prayer)
		}
		return Result{}, nil
	}

	events, err := c.cfg.Provider.TodayEvents(date)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrScheduleUnavailable, err)
	}
	mandatory := make([]logic.Event, 0, len(events))
	for _, e := range events {
		if logic.IsMandatory(e.Prayer) {
			mandatory = append(mandatory, e)
		}
	}

	completions, err := c.cfg.Completions.Completions(ctx, date)
	if err != nil {
		return Result{}, fmt.Errorf("%w: read completions: %v", ErrStoreUnavailable, err)
	}

	// Cache the schedule for the companion process, which cannot call
	// the provider itself. Idempotent overwrite. The completion record
	// is never written here: the completion endpoint owns that key, and
	// rewriting our snapshot would erase a toggle landing mid-pass.
	if err := c.writeScheduleCache(ctx, date, mandatory); err != nil {
		return Result{}, err
	}

	decision := logic.Decide(mandatory, completions, now)

	result := Result{NextWake: decision.NextWake}
	switch {
	case decision.Target != nil:
		record, err := c.applyTarget(ctx, passID, current, *decision.Target, now)
		if err != nil {
			return Result{}, err
		}
		result.Record = record

	case current != nil && current.Active:
		if err := c.applyRelease(ctx, passID, *current); err != nil {
			return Result{}, err
		}

	default:
		result.Record = current
	}

	// Re-register the wake-up every pass: the scheduler slot is
	// single-valued and a registration for an already-passed prayer
	// is useless. Failure is non-fatal; host-side polling backstops.
	if decision.NextWake != nil {
		if err := c.cfg.Scheduler.Register(*decision.NextWake); err != nil {
			log.Printf("reconcile [%s] wake registration failed: %v", passID, err)
		}
	}

	return result, nil
}

// applyTarget converges the store and adapter on an active block for
// target. Returns the record as left in the store.
func (c *Coordinator) applyTarget(ctx context.Context, passID string, current *logic.BlockingRecord, target logic.Event, now time.Time) (*logic.BlockingRecord, error) {
	if logic.RecordMatches(current, &target, now) {
		// Already blocking the right prayer; nothing to do.
		return current, nil
	}

	record := logic.NewBlockingRecord(target)

	// Store first, adapter second: if the write fails the adapter is
	// never called, so enforcement and recorded state cannot diverge.
	if err := c.writeRecord(ctx, record); err != nil {
		return nil, err
	}

	if err := c.cfg.Enforcer.Activate(target.Prayer); err != nil {
		// The store must not say "active" when activation definitely
		// failed. Best-effort revert; the next trigger retries.
		c.revertRecord(ctx, passID, current)
		return nil, fmt.Errorf("%w: activate %s: %v", ErrEnforcement, target.Prayer, err)
	}

	c.counts.Activations++
	log.Printf("reconcile [%s] block activated: %s (due %s)", passID, target.Prayer, target.Time.Format(time.RFC3339))
	if c.cfg.Notifier != nil {
		c.cfg.Notifier.BlockActivated(passID, target.Prayer, target.Time)
	}
	return &record, nil
}

// applyRelease converges on no active block. current must be active.
func (c *Coordinator) applyRelease(ctx context.Context, passID string, current logic.BlockingRecord) error {
	released := current
	released.Active = false

	if err := c.writeRecord(ctx, released); err != nil {
		return err
	}

	if err := c.cfg.Enforcer.Release(); err != nil {
		// Enforcement is still on; put the record back so the state
		// the companion sees matches the device.
		c.revertRecord(ctx, passID, &current)
		return fmt.Errorf("%w: release: %v", ErrEnforcement, err)
	}

	c.counts.Releases++
	log.Printf("reconcile [%s] block released: %s", passID, current.Prayer)
	if c.cfg.Notifier != nil {
		c.cfg.Notifier.BlockReleased(passID, current.Prayer)
	}
	return nil
}

// readRecord loads the shared blocking record. A corrupt record is
// treated as absent (it will be overwritten by this pass).
func (c *Coordinator) readRecord(ctx context.Context, passID string) (*logic.BlockingRecord, error) {
	value, err := c.cfg.Store.Get(ctx, store.KeyBlockingRecord)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read record: %v", ErrStoreUnavailable, err)
	}
	record, err := store.ParseBlockingRecord(value)
	if err != nil {
		log.Printf("reconcile [%s] corrupt blocking record, treating as absent: %v", passID, err)
		return nil, nil
	}
	return &record, nil
}

func (c *Coordinator) writeRecord(ctx context.Context, record logic.BlockingRecord) error {
	value, err := store.FormatBlockingRecord(record)
	if err != nil {
		return err
	}
	if err := c.cfg.Store.Set(ctx, store.KeyBlockingRecord, value); err != nil {
		return fmt.Errorf("%w: write record: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// revertRecord restores the pre-pass record after an adapter failure.
// Best effort: if this also fails the next pass re-derives from
// scratch anyway.
func (c *Coordinator) revertRecord(ctx context.Context, passID string, previous *logic.BlockingRecord) {
	var err error
	if previous == nil {
		err = c.cfg.Store.Delete(ctx, store.KeyBlockingRecord)
	} else {
		err = c.writeRecord(ctx, *previous)
	}
	if err != nil {
		log.Printf("reconcile [%s] record revert failed: %v", passID, err)
	}
}

func (c *Coordinator) writeScheduleCache(ctx context.Context, date string, events []logic.Event) error {
	value, err := store.FormatScheduleCache(date, events)
	if err != nil {
		return err
	}
	if err := c.cfg.Store.Set(ctx, store.KeyScheduleCache, value); err != nil {
		return fmt.Errorf("%w: write schedule cache: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Counts returns a snapshot of activity counters.
func (c *Coordinator) Counts() logic.Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts
}
