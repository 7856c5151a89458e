package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/prayerlock/internal/completion"
	"github.com/sweeney/prayerlock/internal/logic"
	"github.com/sweeney/prayerlock/internal/status"
)

func testClock() func() time.Time {
	now := time.Date(2026, 8, 29, 12, 30, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func testTracker() *status.Tracker {
	return status.NewTracker(time.Date(2026, 8, 29, 4, 0, 0, 0, time.UTC), status.Config{
		TimerSec: 60,
		Broker:   "tcp://127.0.0.1:1883",
		HTTPAddr: ":8321",
	})
}

func TestHandleJSON(t *testing.T) {
	tracker := testTracker()
	record := logic.NewBlockingRecord(logic.Event{
		Prayer: logic.PrayerDhuhr,
		Time:   time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	})
	wake := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	tracker.UpdateReconcile("timer", time.Now(), &record, &wake, logic.Counts{Reconciles: 3, Activations: 1}, nil)
	tracker.SetAuthorized(true)

	s := New("", tracker, completion.NewFakeSource(), nil, testClock())
	w := httptest.NewRecorder()
	s.handleJSON(w, httptest.NewRequest(http.MethodGet, "/index.json", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got StatusJSON
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Status.Target != "dhuhr" || !got.Status.BlockActive {
		t.Errorf("unexpected blocking status: %+v", got.Status)
	}
	if got.Status.NextWake != "2026-08-29T15:00:00Z" {
		t.Errorf("unexpected next wake: %s", got.Status.NextWake)
	}
	if got.Status.Counts.Reconciles != 3 || got.Status.Counts.Activations != 1 {
		t.Errorf("unexpected counts: %+v", got.Status.Counts)
	}
}

func TestHandleIndexHTML(t *testing.T) {
	s := New("", testTracker(), completion.NewFakeSource(), nil, testClock())
	w := httptest.NewRecorder()
	s.handleIndex(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Prayer Lock") {
		t.Error("expected page title in body")
	}
	if !strings.Contains(body, "Enforcement") {
		t.Error("expected enforcement row in body")
	}
}

func TestHandleIndexNotFound(t *testing.T) {
	s := New("", testTracker(), completion.NewFakeSource(), nil, testClock())
	w := httptest.NewRecorder()
	s.handleIndex(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHandleCompleteTriggersReconcile(t *testing.T) {
	completions := completion.NewFakeSource()
	reconciles := 0
	s := New("", testTracker(), completions, func(ctx context.Context) error {
		reconciles++
		return nil
	}, testClock())

	body := strings.NewReader(`{"prayer":"dhuhr","state":"completed"}`)
	w := httptest.NewRecorder()
	s.handleComplete(w, httptest.NewRequest(http.MethodPost, "/complete", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if reconciles != 1 {
		t.Errorf("expected one synchronous reconcile, got %d", reconciles)
	}

	states, err := completions.Completions(context.Background(), "2026-08-29")
	if err != nil {
		t.Fatalf("completions: %v", err)
	}
	if states[logic.PrayerDhuhr] != logic.StateCompleted {
		t.Errorf("completion not recorded: %v", states)
	}
}

func TestHandleCompleteValidation(t *testing.T) {
	s := New("", testTracker(), completion.NewFakeSource(), nil, testClock())

	cases := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"unknown prayer", `{"prayer":"sunrise","state":"completed"}`, http.StatusBadRequest},
		{"unknown state", `{"prayer":"fajr","state":"done"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		s.handleComplete(w, httptest.NewRequest(http.MethodPost, "/complete", strings.NewReader(tc.body)))
		if w.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, w.Code)
		}
	}

	// GET is not allowed.
	w := httptest.NewRecorder()
	s.handleComplete(w, httptest.NewRequest(http.MethodGet, "/complete", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET, got %d", w.Code)
	}
}

func TestHandleCompleteReconcileFailureStillOK(t *testing.T) {
	// The completion is recorded even if the reconcile fails; the next
	// trigger converges enforcement.
	completions := completion.NewFakeSource()
	s := New("", testTracker(), completions, func(ctx context.Context) error {
		return context.DeadlineExceeded
	}, testClock())

	body := strings.NewReader(`{"prayer":"asr","state":"excused"}`)
	w := httptest.NewRecorder()
	s.handleComplete(w, httptest.NewRequest(http.MethodPost, "/complete", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	states, _ := completions.Completions(context.Background(), "2026-08-29")
	if states[logic.PrayerAsr] != logic.StateExcused {
		t.Errorf("completion not recorded: %v", states)
	}
}
