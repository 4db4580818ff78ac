package upload

import (
	"context"
	"math"
	"sync"
	"time"

	"climb-sync/internal/vision"
)

// DefaultPollInterval is the fixed interval between job status requests.
const DefaultPollInterval = 2 * time.Second

// StatusClient is the slice of the analysis-service client the poller
// consumes. *vision.Client satisfies it.
type StatusClient interface {
	JobStatus(ctx context.Context, jobID string) (*vision.JobStatus, error)
}

// PollingTransport tracks a job by requesting its status on a fixed interval.
// Progress is taken from every pending tick; a terminal "completed" status
// ends tracking with the owner identity; any transport or parse error ends
// tracking immediately — there is no retry.
type PollingTransport struct {
	client   StatusClient
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewPollingTransport returns a PollingTransport using client. If interval
// <= 0, DefaultPollInterval is used.
func NewPollingTransport(client StatusClient, interval time.Duration) *PollingTransport {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollingTransport{client: client, interval: interval}
}

// Track implements JobTransport.Track.
func (t *PollingTransport) Track(ctx context.Context, jobID string, events TransportEvents) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()

	go t.loop(ctx, jobID, events)
}

// Stop implements JobTransport.Stop. Idempotent.
func (t *PollingTransport) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (t *PollingTransport) loop(ctx context.Context, jobID string, events TransportEvents) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, err := t.client.JobStatus(ctx, jobID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				events.Error(err)
				return
			}
			if status.Status == vision.StatusCompleted {
				events.Complete(status.Owner)
				return
			}
			events.Progress(int(math.Round(status.ProcessingProgress)))
		}
	}
}
