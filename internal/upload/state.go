package upload

import "climb-sync/internal/nav"

// Phase is the tag of the job state variant. Exactly one phase is active at a
// time per upload attempt.
type Phase int

const (
	// PhaseIdle: no attempt in flight. Selecting or deselecting a file does
	// not change state.
	PhaseIdle Phase = iota
	// PhaseUploading: the cache pre-check and file transfer are in progress.
	PhaseUploading
	// PhaseServerCached: the pre-check found existing results; the transfer
	// was bypassed and completion follows immediately.
	PhaseServerCached
	// PhasePolling: a server-side job is being tracked to completion, by
	// interval polling or by a push channel.
	PhasePolling
	// PhaseCompleted: terminal success; Videos carries the payload.
	PhaseCompleted
	// PhaseFailed: terminal for this attempt; Reason is the user-visible
	// message. A new submit is always permitted afterwards.
	PhaseFailed
)

// String returns the wire/display name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUploading:
		return "uploading"
	case PhaseServerCached:
		return "server_cached"
	case PhasePolling:
		return "polling"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends the attempt.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// State is one snapshot of the job state machine: the active phase plus its
// payload. Progress is 0–100. Videos is set only in PhaseCompleted; Reason
// only in PhaseFailed.
type State struct {
	Phase     Phase
	AttemptID string
	JobID     string
	Progress  int
	Videos    []nav.VideoItem
	Reason    string
}
