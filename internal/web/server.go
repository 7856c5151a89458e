// Package web provides the HTTP status and control server for the
// prayerlockd daemon. Besides the status page it exposes the
// completion endpoint the surrounding app uses to mark prayers done.
package web

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/sweeney/prayerlock/internal/completion"
	"github.com/sweeney/prayerlock/internal/logic"
	"github.com/sweeney/prayerlock/internal/status"
)

// ReconcileFunc runs one reconciliation pass for the completion
// trigger. It must block until the pass finishes so release is a
// synchronous effect of the completion request.
type ReconcileFunc func(ctx context.Context) error

// Server serves the status page and the completion endpoint.
type Server struct {
	httpServer  *http.Server
	tracker     *status.Tracker
	completions completion.Source
	reconcile   ReconcileFunc
	now         func() time.Time
}

// New creates a Server. reconcile may be nil (completion endpoint
// disabled), which only makes sense in tests.
func New(addr string, tracker *status.Tracker, completions completion.Source, reconcile ReconcileFunc, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	s := &Server{
		tracker:     tracker,
		completions: completions,
		reconcile:   reconcile,
		now:         now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/complete", s.handleComplete)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatJSON(snap))
}

// completeRequest is the body of POST /complete.
type completeRequest struct {
	Prayer string `json:"prayer"`
	State  string `json:"state"`
}

// handleComplete records a completion toggle and runs the resulting
// reconciliation before responding, so an active block on the prayer
// is released by the time the app sees the 200.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}

	prayer := logic.Prayer(req.Prayer)
	if !logic.IsMandatory(prayer) {
		http.Error(w, "unknown prayer: "+req.Prayer, http.StatusBadRequest)
		return
	}
	state := logic.CompletionState(req.State)
	switch state {
	case logic.StateIncomplete, logic.StateCompleted, logic.StateExcused:
	default:
		http.Error(w, "unknown state: "+req.State, http.StatusBadRequest)
		return
	}

	date := logic.DateOf(s.now())
	if err := s.completions.SetCompletion(r.Context(), date, prayer, state); err != nil {
		log.Printf("web: set completion failed: %v", err)
		http.Error(w, "completion store unavailable", http.StatusServiceUnavailable)
		return
	}

	if s.reconcile != nil {
		if err := s.reconcile(r.Context()); err != nil {
			// The completion itself is recorded; the next trigger
			// will converge enforcement.
			log.Printf("web: completion-triggered reconcile failed: %v", err)
		}
	}

	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatJSON(snap))
}
