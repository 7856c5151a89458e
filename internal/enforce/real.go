package enforce

import (
	"fmt"
	"os/exec"

	"github.com/sweeney/prayerlock/internal/logic"
)

// HelperConfig names the platform blocking helper commands.
// The helper owns the actual blocking mechanism (app overlay, firewall,
// screen lock — platform dependent); this adapter only invokes it.
type HelperConfig struct {
	// Activate is run as `<Activate> <prayer>`.
	Activate string
	// Release is run with no arguments.
	Release string
	// Check exits 0 when the blocking capability is granted.
	Check string
	// Request prompts the user and exits 0 when granted.
	Request string
}

// RealAdapter invokes the configured blocking helper.
type RealAdapter struct {
	cfg HelperConfig
}

// NewRealAdapter creates an adapter for the given helper commands.
func NewRealAdapter(cfg HelperConfig) *RealAdapter {
	return &RealAdapter{cfg: cfg}
}

// Activate runs the activate helper. The helper is required to be
// idempotent (activating while active exits 0).
func (a *RealAdapter) Activate(prayer logic.Prayer) error {
	out, err := exec.Command(a.cfg.Activate, string(prayer)).CombinedOutput()
	if err != nil {
		return fmt.Errorf("activate helper: %w (output: %s)", err, out)
	}
	return nil
}

// Release runs the release helper. Idempotent per the helper contract.
func (a *RealAdapter) Release() error {
	out, err := exec.Command(a.cfg.Release).CombinedOutput()
	if err != nil {
		return fmt.Errorf("release helper: %w (output: %s)", err, out)
	}
	return nil
}

// IsAuthorized runs the check helper; exit 0 means granted.
func (a *RealAdapter) IsAuthorized() bool {
	return exec.Command(a.cfg.Check).Run() == nil
}

// RequestAuthorization runs the request helper, which may prompt the
// user. A non-zero exit with no exec failure means "declined".
func (a *RealAdapter) RequestAuthorization() (bool, error) {
	err := exec.Command(a.cfg.Request).Run()
	if err == nil {
		return true, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return false, nil
	}
	return false, fmt.Errorf("request helper: %w", err)
}
