package upload

import "context"

// TransportEvents are the callbacks a JobTransport drives while tracking a
// job. Progress carries a 0–100 percentage. Complete carries the owner
// identity used to fetch the finalized payload. Error ends tracking.
type TransportEvents struct {
	Progress func(percent int)
	Complete func(owner string)
	Error    func(err error)
}

// JobTransport tracks a server-side job to completion. Interval polling and
// the push channel are interchangeable implementations: both must produce
// identical observable state transitions through TransportEvents.
//
// Track returns immediately and delivers events from a background goroutine
// until completion, an error, Stop, or ctx cancellation — whichever comes
// first. Stop is idempotent and safe to call from an event callback.
type JobTransport interface {
	Track(ctx context.Context, jobID string, events TransportEvents)
	Stop()
}
