package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/corey/mediascout/internal/ports"
)

// AppQueries gives server handlers access to daemon state and controls.
// Thread safety is the implementor's responsibility.
type AppQueries interface {
	Status() StatusResult
	StartWatch(path string) StatusResult
	StopWatch() StatusResult
	LibraryFiles() (root string, files []ports.MediaFile, err error)
	LibraryCount() (int, error)
}

// Server is the daemon control endpoint listening on a Unix socket.
type Server struct {
	queries  AppQueries
	log      *slog.Logger
	listener net.Listener
	sockPath string
	started  time.Time

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a control server backed by queries.
func NewServer(queries AppQueries, sockPath string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		queries:    queries,
		log:        log.With("component", "socket"),
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first. If the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		// Stale socket, remove it
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	s.log.Info("control socket listening", "path", s.sockPath)
	return nil
}

// Stop gracefully shuts down the server, closing the listener and removing the socket file.
// Idempotent: safe to call multiple times (e.g., after remote shutdown + signal).
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener == nil {
			return // never bound; the socket file may belong to another daemon
		}
		s.listener.Close()
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock the scanner on Stop. Exits with the handler otherwise.
	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-s.done:
			conn.Close()
		case <-closed:
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024) // 1MB max message

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.handleRequest(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodHealth:
		return s.handleHealth(req)
	case MethodStart:
		return s.handleStart(req)
	case MethodStop:
		return Response{ID: req.ID, Result: s.queries.StopWatch()}
	case MethodFiles:
		return s.handleFiles(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

func (s *Server) handleHealth(req Request) Response {
	st := s.queries.Status()
	n, err := s.queries.LibraryCount()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{
		ID: req.ID,
		Result: HealthResult{
			Status:    "ok",
			State:     st.State,
			Root:      st.Root,
			LastError: st.Error,
			FileCount: n,
			Uptime:    time.Since(s.started).Round(time.Second).String(),
		},
	}
}

func (s *Server) handleStart(req Request) Response {
	var params StartParams
	if err := decodeParams(req.Params, &params); err != nil || params.Path == "" {
		return Response{ID: req.ID, Error: "invalid start params"}
	}
	return Response{ID: req.ID, Result: s.queries.StartWatch(params.Path)}
}

func (s *Server) handleFiles(req Request) Response {
	var params FilesParams
	if req.Params != nil {
		if err := decodeParams(req.Params, &params); err != nil {
			return Response{ID: req.ID, Error: "invalid files params"}
		}
	}
	root, files, err := s.queries.LibraryFiles()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	matched := FilterFiles(root, files, params)
	return Response{
		ID: req.ID,
		Result: FilesResult{
			Root:  root,
			Files: matched,
			Count: len(matched),
		},
	}
}

// decodeParams re-marshals generic params into a typed struct.
func decodeParams(params interface{}, v interface{}) error {
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Warn("marshal response", "error", err)
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}
