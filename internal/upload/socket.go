package upload

import (
	"context"
	"math"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// socketMessage is one frame from the analysis service's push channel. The
// service reports a 0–1 fraction for "processing progress" events; the client
// scales it to 0–100.
type socketMessage struct {
	Event    string  `json:"event"`
	Progress float64 `json:"progress"`
	Owner    string  `json:"owner,omitempty"`
}

const progressEventName = "processing progress"

// SocketTransport is the push-channel variant of JobTransport: a persistent
// websocket opened when tracking starts, delivering progress events and a
// completion signal. The client closes the channel once progress reaches
// 100% or on error. It exposes the same observable state transitions as
// PollingTransport.
type SocketTransport struct {
	wsURL string

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
}

// NewSocketTransport returns a SocketTransport that dials wsURL (ws:// or
// wss://), passing the job id as the "job" query parameter.
func NewSocketTransport(wsURL string) *SocketTransport {
	return &SocketTransport{wsURL: wsURL}
}

// Track implements JobTransport.Track.
func (t *SocketTransport) Track(ctx context.Context, jobID string, events TransportEvents) {
	ctx, cancel := context.WithCancel(ctx)

	endpoint := t.wsURL + "?job=" + url.QueryEscape(jobID)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		cancel()
		events.Error(err)
		return
	}

	t.mu.Lock()
	t.conn = conn
	t.cancel = cancel
	t.mu.Unlock()

	// Unblock the read loop when the context ends.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go t.readLoop(ctx, conn, jobID, events)
}

// Stop implements JobTransport.Stop. Idempotent.
func (t *SocketTransport) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.conn = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (t *SocketTransport) readLoop(ctx context.Context, conn *websocket.Conn, jobID string, events TransportEvents) {
	defer conn.Close()

	for {
		var msg socketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			events.Error(err)
			return
		}
		if msg.Event != progressEventName {
			continue
		}

		percent := int(math.Round(msg.Progress * 100))
		events.Progress(percent)

		if percent >= 100 {
			owner := msg.Owner
			if owner == "" {
				owner = jobID
			}
			events.Complete(owner)
			return
		}
	}
}
