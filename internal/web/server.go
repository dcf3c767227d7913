// Package web serves the corrosion monitor's live status: an HTML page, a
// JSON snapshot and a websocket stream of snapshots.
package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/sweeney/corrosion-monitor/internal/status"
)

// Server reads from a status tracker. Shutdown ends open streams before
// stopping the listener.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker

	// streams is cancelled on Shutdown; websocket handlers watch it.
	streams     context.Context
	stopStreams context.CancelFunc
}

// New creates a Server on addr.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}
	s.streams, s.stopStreams = context.WithCancel(context.Background())
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routes without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", readOnly(s.handleIndex))
	mux.HandleFunc("/index.json", readOnly(s.handleJSON))
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown closes live streams with a going-away frame, then stops serving.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopStreams()
	return s.httpServer.Shutdown(ctx)
}

// readOnly rejects anything but GET and HEAD and disables caching; every
// response is a point-in-time snapshot.
func readOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		h(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/", "/index.html":
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.tracker.Snapshot())
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(s.tracker.Snapshot()))
}
