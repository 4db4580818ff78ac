package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"climb-sync/internal/nav"
	"climb-sync/internal/vision"
)

var (
	// ErrNoFileSelected is returned by Submit when no file is selected.
	// It is inline and non-fatal: state is unchanged and no network call is
	// issued.
	ErrNoFileSelected = errors.New("no video file selected")

	// ErrAttemptInProgress is returned by Submit while an attempt is still
	// in flight.
	ErrAttemptInProgress = errors.New("an upload attempt is already in progress")

	// ErrMachineClosed is returned by Submit after Close.
	ErrMachineClosed = errors.New("upload machine is closed")
)

// Service is the slice of the analysis-service client the machine consumes.
// *vision.Client satisfies it.
type Service interface {
	Upload(ctx context.Context, filename string, content io.Reader, clientID string) (*vision.UploadResult, error)
	VideosByOwner(ctx context.Context, owner string) ([]nav.VideoItem, error)
}

// SelectedFile is the file-picker collaborator's output: a name plus the
// binary content.
type SelectedFile struct {
	Name    string
	Content io.Reader
}

// Machine is the upload/processing job state machine. It uploads a file,
// decides whether results are already cached, and otherwise tracks the
// asynchronous server job to completion through a JobTransport, exposing one
// State value at every step.
//
// All transitions go through the machine's mutex; it is the single writer
// pathway for job state.
type Machine struct {
	service   Service
	transport JobTransport
	log       *slog.Logger

	mu       sync.Mutex
	state    State
	onChange func(State)
	cancel   context.CancelFunc
	closed   bool
}

// NewMachine returns a Machine that uploads through service and tracks jobs
// through transport. The transport is chosen at construction; polling and
// push behave identically from the machine's point of view.
func NewMachine(service Service, transport JobTransport, log *slog.Logger) *Machine {
	return &Machine{
		service:   service,
		transport: transport,
		log:       log,
		state:     State{Phase: PhaseIdle},
	}
}

// OnChange registers the observer invoked with a state snapshot after every
// transition. The observer runs with the machine lock held and must not call
// back into the Machine. Call before the first Submit.
func (m *Machine) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// State returns a snapshot of the current job state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshotState(m.state)
}

// Submit starts a new upload attempt. It rejects an empty selection with
// ErrNoFileSelected (no state change, no network call) and rejects re-entry
// with ErrAttemptInProgress while a prior attempt is still in flight. After a
// terminal state a new submit is always permitted and clears the previous
// result or error.
func (m *Machine) Submit(ctx context.Context, file SelectedFile) error {
	if file.Name == "" || file.Content == nil {
		return ErrNoFileSelected
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrMachineClosed
	}
	switch m.state.Phase {
	case PhaseIdle, PhaseCompleted, PhaseFailed:
	default:
		m.mu.Unlock()
		return ErrAttemptInProgress
	}

	attemptID := uuid.NewString()
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.setStateLocked(State{Phase: PhaseUploading, AttemptID: attemptID})
	m.mu.Unlock()

	m.log.Info("upload attempt started", "attempt_id", attemptID, "file", file.Name)
	go m.run(ctx, attemptID, file)
	return nil
}

// Close tears down the machine: the polling interval or push channel is
// stopped and the in-flight attempt, if any, is cancelled. Used when the
// owning view is no longer active.
func (m *Machine) Close() {
	m.mu.Lock()
	m.closed = true
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.transport.Stop()
}

// run executes one attempt: cache pre-check, transfer, then job tracking.
func (m *Machine) run(ctx context.Context, attemptID string, file SelectedFile) {
	// Best-effort cache pre-check keyed by the file name. Its own failure is
	// swallowed and logged, never surfaced; normal upload proceeds.
	if videos, err := m.service.VideosByOwner(ctx, file.Name); err != nil {
		m.log.Warn("cache pre-check failed, continuing with upload",
			"attempt_id", attemptID, "error", err)
	} else if len(videos) > 0 {
		m.log.Info("cache hit, transfer bypassed", "attempt_id", attemptID, "videos", len(videos))
		m.transition(attemptID, State{Phase: PhaseServerCached, AttemptID: attemptID})
		m.complete(attemptID, videos)
		return
	}

	result, err := m.service.Upload(ctx, file.Name, file.Content, attemptID)
	if err != nil {
		m.fail(attemptID, err.Error())
		return
	}

	if result.AlreadyProcessed {
		m.complete(attemptID, result.Videos)
		return
	}
	if result.JobID == "" {
		m.fail(attemptID, "upload response carried neither results nor a job id")
		return
	}

	m.transition(attemptID, State{Phase: PhasePolling, AttemptID: attemptID, JobID: result.JobID})
	m.transport.Track(ctx, result.JobID, TransportEvents{
		Progress: func(percent int) { m.setProgress(attemptID, percent) },
		Complete: func(owner string) { m.finishJob(ctx, attemptID, owner) },
		Error:    func(err error) { m.fail(attemptID, err.Error()) },
	})
}

// setProgress records a tracking progress update.
func (m *Machine) setProgress(attemptID string, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.AttemptID != attemptID || m.state.Phase != PhasePolling {
		return
	}
	next := m.state
	next.Progress = percent
	m.setStateLocked(next)
}

// finishJob handles the terminal "completed" signal: tracking stops and one
// more request fetches the finalized payload by owner identity.
func (m *Machine) finishJob(ctx context.Context, attemptID, owner string) {
	m.transport.Stop()

	videos, err := m.service.VideosByOwner(ctx, owner)
	if err != nil {
		m.fail(attemptID, err.Error())
		return
	}
	m.complete(attemptID, videos)
}

// complete enters the terminal success state with the new video list.
func (m *Machine) complete(attemptID string, videos []nav.VideoItem) {
	m.transport.Stop()
	m.transition(attemptID, State{
		Phase:     PhaseCompleted,
		AttemptID: attemptID,
		Progress:  100,
		Videos:    videos,
	})
}

// fail enters the terminal failure state with a user-visible reason and
// ceases all tracking.
func (m *Machine) fail(attemptID, reason string) {
	m.transport.Stop()
	m.log.Error("upload attempt failed", "attempt_id", attemptID, "reason", reason)
	m.transition(attemptID, State{Phase: PhaseFailed, AttemptID: attemptID, Reason: reason})
}

// transition applies next unless a newer attempt has superseded this one or
// the current attempt already reached a terminal state.
func (m *Machine) transition(attemptID string, next State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.AttemptID != attemptID || m.state.Phase.Terminal() {
		return
	}
	m.setStateLocked(next)
}

// setStateLocked stores the state and notifies the observer. Caller must
// hold m.mu.
func (m *Machine) setStateLocked(next State) {
	m.state = next
	if m.onChange != nil {
		m.onChange(snapshotState(next))
	}
}

// snapshotState copies the slice payload so observers never alias machine
// state.
func snapshotState(s State) State {
	s.Videos = append([]nav.VideoItem(nil), s.Videos...)
	return s
}
