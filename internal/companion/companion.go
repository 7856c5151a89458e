// Package companion implements the wake-up routine of the companion
// process. The companion is scheduled by the OS, shares no memory with
// the host daemon, and sees only the shared durable store.
//
// It is deliberately one-sided: it may re-apply enforcement the host
// recorded, but it never releases and never writes. The companion has
// no way to observe "the user just completed the prayer" other than
// the host updating the store, so release decisions belong to the host
// alone.
package companion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sweeney/prayerlock/internal/enforce"
	"github.com/sweeney/prayerlock/internal/logic"
	"github.com/sweeney/prayerlock/internal/store"
)

// Run executes one companion wake-up: read the blocking record and, if
// it is active and belongs to the current calendar day, activate
// enforcement. Returns whether enforcement was activated.
func Run(ctx context.Context, st store.Store, enforcer enforce.Adapter, now time.Time) (bool, error) {
	value, err := st.Get(ctx, store.KeyBlockingRecord)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("companion: no blocking record, nothing to do")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read blocking record: %w", err)
	}

	record, err := store.ParseBlockingRecord(value)
	if err != nil {
		return false, fmt.Errorf("parse blocking record: %w", err)
	}

	if !record.Active {
		log.Printf("companion: record for %s is inactive, nothing to do", record.Prayer)
		return false, nil
	}
	if !record.SameDay(now) {
		// Stale record from a previous day. Invalidation is the
		// host's job; the companion just refuses to act on it.
		log.Printf("companion: record for %s dated %s is stale, ignoring", record.Prayer, record.Date)
		return false, nil
	}
	if !enforcer.IsAuthorized() {
		log.Printf("companion: not authorized, nothing to do")
		return false, nil
	}

	logScheduleContext(ctx, st, record.Prayer)

	// Idempotent: if the host already activated, this is a no-op on
	// the device.
	if err := enforcer.Activate(record.Prayer); err != nil {
		return false, fmt.Errorf("activate %s: %w", record.Prayer, err)
	}
	log.Printf("companion: enforcement active for %s", record.Prayer)
	return true, nil
}

// logScheduleContext reports what the host last cached, for debugging
// wake-ups that fire while the host is dead. Read-only.
func logScheduleContext(ctx context.Context, st store.Store, prayer logic.Prayer) {
	value, err := st.Get(ctx, store.KeyScheduleCache)
	if err != nil {
		return
	}
	date, events, err := store.ParseScheduleCache(value)
	if err != nil {
		return
	}
	for _, e := range events {
		if e.Prayer == prayer {
			log.Printf("companion: cached schedule %s has %s at %s", date, prayer, e.Time.Format(time.RFC3339))
			return
		}
	}
	log.Printf("companion: cached schedule %s has no entry for %s", date, prayer)
}
