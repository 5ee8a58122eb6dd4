package diagnosticsserver

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lox/idleplanner/sdk/planner"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	s := NewServer(nil)
	s.ensureRoutes()
	httpSrv := httptest.NewServer(s.mux)
	t.Cleanup(httpSrv.Close)

	return s, httpSrv
}

func dialViewer(t *testing.T, httpSrv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial viewer: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServerPublishesSnapshotToConnectedViewer(t *testing.T) {
	t.Parallel()

	s, httpSrv := newTestServer(t)
	conn := dialViewer(t, httpSrv)

	waitForViewerCount(t, s, 1)

	s.Publish(planner.Profile{ExpandedNodes: 42, BestCredits: 7})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if msg.Type != MessageTypeSnapshot {
		t.Fatalf("expected a snapshot message, got %q", msg.Type)
	}
}

func TestServerDropsViewerOnDisconnect(t *testing.T) {
	t.Parallel()

	s, httpSrv := newTestServer(t)
	conn := dialViewer(t, httpSrv)
	waitForViewerCount(t, s, 1)

	if err := conn.Close(); err != nil {
		t.Fatalf("close viewer: %v", err)
	}

	waitForViewerCount(t, s, 0)
}

func TestServerPublishWithNoViewersDoesNotBlock(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	done := make(chan struct{})
	go func() {
		s.Publish(planner.Profile{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Publish blocked with no connected viewers")
	}
}

func waitForViewerCount(t *testing.T, s *Server, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.ViewerCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d viewers, got %d", want, s.ViewerCount())
}
