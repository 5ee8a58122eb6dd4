package diagnosticsserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/idleplanner/sdk/planner"
)

// Server streams planner.Profile snapshots to any number of connected
// diagnostics viewers over WebSocket. It is one-way and
// publish-subscribe only: no auth, no multiplayer table/game
// semantics, no client commands — everything internal/server's
// GameService/Connection carry for poker's two-way protocol that a
// solve doesn't need. Grounded on internal/server/game_service.go's
// GameService (connection registry + broadcast) and server.go's
// HTTP-upgrade wiring.
type Server struct {
	logger   *log.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
	http     *http.Server

	mu      sync.RWMutex
	viewers map[*viewerConn]struct{}

	routesOnce sync.Once
}

// NewServer returns a Server ready to Serve. logger may be nil, in
// which case a discarding logger is used.
func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		logger: logger.WithPrefix("diagnostics"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		mux:     http.NewServeMux(),
		viewers: make(map[*viewerConn]struct{}),
	}
}

func (s *Server) ensureRoutes() {
	s.routesOnce.Do(func() {
		s.mux.HandleFunc("/ws", s.handleWebSocket)
		s.mux.HandleFunc("/health", s.handleHealth)
	})
}

// Start listens on addr and serves until the listener errors or
// Shutdown is called.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve runs the HTTP server on an existing listener, matching
// internal/server.Server.Serve's split from Start.
func (s *Server) Serve(listener net.Listener) error {
	s.ensureRoutes()
	s.http = &http.Server{Handler: s.mux}
	s.logger.Info("diagnostics server starting", "addr", listener.Addr().String())
	return s.http.Serve(listener)
}

// Shutdown gracefully stops the HTTP server and closes every viewer
// connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for v := range s.viewers {
		v.close()
	}
	s.viewers = make(map[*viewerConn]struct{})
	s.mu.Unlock()

	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Publish broadcasts profile to every connected viewer. It never
// blocks on a slow viewer; see viewerConn.publish.
func (s *Server) Publish(profile planner.Profile) {
	msg, err := NewMessage(MessageTypeSnapshot, SnapshotDataFromProfile(profile))
	if err != nil {
		s.logger.Error("failed to encode snapshot", "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for v := range s.viewers {
		v.publish(msg)
	}
}

// ViewerCount reports how many diagnostics viewers are connected.
func (s *Server) ViewerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.viewers)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	v := newViewerConn(conn, s.logger)
	s.register(v)
	v.start()
	go s.cleanupWhenClosed(v)
}

func (s *Server) register(v *viewerConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewers[v] = struct{}{}
	s.logger.Debug("viewer connected", "total", len(s.viewers))
}

func (s *Server) cleanupWhenClosed(v *viewerConn) {
	<-v.closed
	s.mu.Lock()
	delete(s.viewers, v)
	remaining := len(s.viewers)
	s.mu.Unlock()
	s.logger.Debug("viewer disconnected", "remaining", remaining)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}
