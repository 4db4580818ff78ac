package gateway

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"climb-sync/internal/platform/metrics"
)

// seekFrame is the command pushed to connected players.
type seekFrame struct {
	Type   string `json:"type"`
	Index  int    `json:"index"`
	SeekMs int64  `json:"seekMs"`
}

// playerFrame is an inbound message from a player: a readiness or error
// report for one video index.
type playerFrame struct {
	Type   string `json:"type"`
	Index  int    `json:"index"`
	Status string `json:"status"`
}

// Hub fans seek commands out to every connected player frontend over
// websockets and routes inbound readiness reports to the controller. It
// implements nav.Player.
type Hub struct {
	log      *slog.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	conns    map[*websocket.Conn]struct{}
	onStatus func(index int, ready bool) error
}

// NewHub returns a Hub. Metrics may be nil to disable metric recording.
func NewHub(log *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		log:     log,
		metrics: m,
		conns:   make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// SetStatusHandler registers the callback for inbound player status reports.
// Call before serving connections.
func (h *Hub) SetStatusHandler(fn func(index int, ready bool) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStatus = fn
}

// ServeWS handles GET /ws/players: upgrades the connection, keeps it
// subscribed to seek commands, and reads player status frames until the peer
// goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	statusFn := h.onStatus
	h.mu.Unlock()

	for {
		var frame playerFrame
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}
		if frame.Type != "status" || statusFn == nil {
			continue
		}
		if err := statusFn(frame.Index, frame.Status == "ready"); err != nil {
			h.log.Warn("player status rejected",
				"index", frame.Index, "status", frame.Status, "error", err)
		}
	}

	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// Seek implements nav.Player by broadcasting a seek command for one video
// index to every connected player.
func (h *Hub) Seek(index int, ms int64) {
	frame := seekFrame{Type: "seek", Index: index, SeekMs: ms}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteJSON(frame); err != nil {
			h.mu.Lock()
			delete(h.conns, c)
			h.mu.Unlock()
			_ = c.Close()
		}
	}

	if h.metrics != nil {
		h.metrics.IncSeeksIssued()
	}
	h.log.Debug("seek issued", "index", index, "seek_ms", ms)
}
