package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"climb-sync/internal/platform/logger"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial hub: %v", err)
	}
	return conn
}

func TestHub_routes_status_and_broadcasts_seeks(t *testing.T) {
	hub := NewHub(logger.Nop(), nil)

	var mu sync.Mutex
	var gotIndex int
	var gotReady bool
	reported := make(chan struct{}, 1)
	hub.SetStatusHandler(func(index int, ready bool) error {
		mu.Lock()
		gotIndex, gotReady = index, ready
		mu.Unlock()
		reported <- struct{}{}
		return nil
	})

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()

	// A status frame proves the connection is registered before we broadcast.
	if err := conn.WriteJSON(playerFrame{Type: "status", Index: 1, Status: "ready"}); err != nil {
		t.Fatalf("write status: %v", err)
	}
	select {
	case <-reported:
	case <-time.After(2 * time.Second):
		t.Fatal("status frame never reached the handler")
	}
	mu.Lock()
	if gotIndex != 1 || !gotReady {
		t.Errorf("status handler got index=%d ready=%v, want 1/true", gotIndex, gotReady)
	}
	mu.Unlock()

	hub.Seek(0, 2120)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame seekFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read seek frame: %v", err)
	}
	if frame.Type != "seek" || frame.Index != 0 || frame.SeekMs != 2120 {
		t.Errorf("seek frame = %+v, want seek/0/2120", frame)
	}
}

func TestHub_error_status_routed(t *testing.T) {
	hub := NewHub(logger.Nop(), nil)

	readiness := make(chan bool, 1)
	hub.SetStatusHandler(func(index int, ready bool) error {
		readiness <- ready
		return nil
	})

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()

	if err := conn.WriteJSON(playerFrame{Type: "status", Index: 0, Status: "error"}); err != nil {
		t.Fatalf("write status: %v", err)
	}

	select {
	case ready := <-readiness:
		if ready {
			t.Error("an error status should be routed as not ready")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("status frame never reached the handler")
	}
}

func TestHub_ignores_unknown_frames(t *testing.T) {
	hub := NewHub(logger.Nop(), nil)

	called := make(chan struct{}, 1)
	hub.SetStatusHandler(func(index int, ready bool) error {
		called <- struct{}{}
		return nil
	})

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "chatter"}); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	select {
	case <-called:
		t.Error("unknown frame types must not reach the status handler")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_seek_without_connections(t *testing.T) {
	hub := NewHub(logger.Nop(), nil)
	// Must not panic or block with nobody connected.
	hub.Seek(3, 1000)
}
