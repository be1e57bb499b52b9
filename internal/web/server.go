// Package web provides the HTTP status server for the levelsim daemon.
package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/sweeney/levelsim/internal/history"
	"github.com/sweeney/levelsim/internal/status"
)

// Server serves the status page, the JSON endpoints, and the live WebSocket
// feed over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	hist       *history.Ring
}

// New creates a Server that reads state from the given tracker and history
// ring. wsHandler may be nil, in which case /ws returns 404.
func New(addr string, tracker *status.Tracker, hist *history.Ring, wsHandler http.Handler) *Server {
	s := &Server{tracker: tracker, hist: hist}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/history.json", s.handleHistory)
	if wsHandler != nil {
		mux.Handle("/ws", wsHandler)
	}

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
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	samples := s.hist.Last(0)
	if samples == nil {
		samples = []history.Sample{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(samples) //nolint:errcheck
}
