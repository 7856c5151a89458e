package enforce

import (
	"errors"
	"testing"

	"github.com/sweeney/prayerlock/internal/logic"
)

func TestFakeAdapterRecordsCalls(t *testing.T) {
	f := NewFakeAdapter()

	if err := f.Activate(logic.PrayerFajr); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !f.Active {
		t.Error("expected active after activate")
	}

	// Idempotent: activating again is a no-op success.
	if err := f.Activate(logic.PrayerFajr); err != nil {
		t.Fatalf("second activate: %v", err)
	}
	if len(f.Activations) != 2 {
		t.Errorf("expected both calls recorded, got %d", len(f.Activations))
	}

	if err := f.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if f.Active {
		t.Error("expected inactive after release")
	}
	if err := f.Release(); err != nil {
		t.Fatalf("second release: %v", err)
	}
	if f.ReleaseCalls != 2 {
		t.Errorf("expected both releases recorded, got %d", f.ReleaseCalls)
	}
}

func TestFakeAdapterErrorInjection(t *testing.T) {
	f := NewFakeAdapter()
	f.ActivateError = errors.New("denied")

	if err := f.Activate(logic.PrayerAsr); err == nil {
		t.Fatal("expected injected error")
	}
	if f.Active {
		t.Error("failed activate must not flip Active")
	}
	if len(f.Activations) != 1 {
		t.Error("failed call should still be recorded")
	}
}

func TestFakeAdapterAuthorization(t *testing.T) {
	f := NewFakeAdapter()
	if !f.IsAuthorized() {
		t.Error("fake starts authorized")
	}

	f.Authorized = false
	f.RequestResult = true
	granted, err := f.RequestAuthorization()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if !granted || !f.IsAuthorized() {
		t.Error("expected authorization granted")
	}

	f.RequestResult = false
	granted, _ = f.RequestAuthorization()
	if granted || f.IsAuthorized() {
		t.Error("expected authorization declined")
	}
}
