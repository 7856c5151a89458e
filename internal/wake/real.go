package wake

import (
	"fmt"
	"os/exec"
	"time"
)

// unitName is the fixed transient timer unit. Reusing one name gives
// the single-slot replace semantics: a new registration supersedes
// the old one instead of queueing beside it.
const unitName = "prayerlock-companion"

// RealScheduler registers wake-ups as a transient systemd timer that
// starts the companion binary.
type RealScheduler struct {
	companionPath string
	companionArgs []string
}

// NewRealScheduler creates a scheduler that will start the companion
// binary at companionPath with the given arguments.
func NewRealScheduler(companionPath string, companionArgs ...string) *RealScheduler {
	return &RealScheduler{companionPath: companionPath, companionArgs: companionArgs}
}

// calendarSpec renders wakeAt for OnCalendar=. The zone is spelled
// out: systemd reads a bare spec in the machine's local timezone,
// which need not match the configured day-boundary zone.
func calendarSpec(wakeAt time.Time) string {
	return wakeAt.UTC().Format("2006-01-02 15:04:05 UTC")
}

// Register replaces the companion wake-up timer.
func (s *RealScheduler) Register(wakeAt time.Time) error {
	// Stop any previous registration; a missing unit is fine.
	exec.Command("systemctl", "stop", unitName+".timer").Run()

	args := []string{
		"--unit=" + unitName,
		"--collect",
		"--on-calendar=" + calendarSpec(wakeAt),
		"--timer-property=WakeSystem=true",
		s.companionPath,
	}
	args = append(args, s.companionArgs...)

	out, err := exec.Command("systemd-run", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemd-run: %w (output: %s)", err, out)
	}
	return nil
}
