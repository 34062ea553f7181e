// Package web serves the daemon's JSON API and live event stream over HTTP.
// Binds to localhost only, no auth.
package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/corey/mediascout/internal/adapters/socket"
	"github.com/corey/mediascout/internal/ports"
)

// EventFeed opens a live stream of discovery events. cancel releases the
// stream and closes events.
type EventFeed func(buffer int) (events <-chan ports.Event, cancel func())

// keepAlive is the SSE comment interval that keeps idle proxies from
// dropping the stream.
const keepAlive = 15 * time.Second

// Server serves the JSON API over HTTP.
type Server struct {
	queries  socket.AppQueries
	feed     EventFeed
	log      *slog.Logger
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	done     chan struct{}
	stopOnce sync.Once

	portFilePath string // .mediascout/http.port
}

// NewServer creates an HTTP server for the API.
// The portFilePath is where the bound port is written for discovery.
func NewServer(queries socket.AppQueries, feed EventFeed, portFilePath string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		queries:      queries,
		feed:         feed,
		log:          log.With("component", "web"),
		portFilePath: portFilePath,
		done:         make(chan struct{}),
		started:      time.Now(),
	}
}

// DefaultPort computes a root-specific port: 19000 + (hash(abs_path) % 1000).
func DefaultPort(root string) int {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	h := sha256.Sum256([]byte(abs))
	// Use first 4 bytes as uint32
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 19000 + int(n%1000)
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/files", s.handleFiles)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	return mux
}

// Start begins listening on the preferred port. Writes the port to the port file.
func (s *Server) Start(preferredPort int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", preferredPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started = time.Now()

	s.httpSrv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	// Write port file for discovery
	if s.portFilePath != "" {
		if err := os.WriteFile(s.portFilePath, []byte(fmt.Sprintf("%d", s.port)), 0644); err != nil {
			s.log.Warn("write port file", "path", s.portFilePath, "error", err)
		}
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("http serve", "error", err)
		}
	}()
	s.log.Info("http listening", "url", s.URL())
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done) // ends open event streams
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.portFilePath != "" {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the API base URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.queries.Status()
	n, err := s.queries.LibraryCount()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, socket.HealthResult{
		Status:    "ok",
		State:     st.State,
		Root:      st.Root,
		LastError: st.Error,
		FileCount: n,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := socket.FilesParams{
		Glob: q.Get("glob"),
		Name: q.Get("name"),
		Kind: q.Get("kind"),
	}

	root, files, err := s.queries.LibraryFiles()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	matched := socket.FilterFiles(root, files, params)
	writeJSON(w, socket.FilesResult{
		Root:  root,
		Files: matched,
		Count: len(matched),
	})
}

// handleEvents streams discovery events as server-sent events, one
// "added" or "removed" event per file, until the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok || s.feed == nil {
		writeError(w, http.StatusServiceUnavailable, "event stream not available")
		return
	}

	events, cancel := s.feed(64)
	defer cancel()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.log.Warn("marshal event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
