package gateway

import (
	"climb-sync/internal/nav"
	"climb-sync/internal/platform/metrics"
	"climb-sync/internal/upload"
)

// WireJobEvents connects upload machine transitions to the navigation
// controller and metrics: a new attempt clears the session before any request
// is issued, so stale videos are never shown alongside a new result, and
// completion installs the fresh payload. Metrics may be nil.
//
// Must be called before the machine's first Submit.
func WireJobEvents(machine *upload.Machine, controller *nav.Controller, m *metrics.Metrics) {
	machine.OnChange(func(state upload.State) {
		switch state.Phase {
		case upload.PhaseUploading:
			controller.ClearVideos()
			if m != nil {
				m.IncUploadsStarted()
			}
		case upload.PhaseServerCached:
			if m != nil {
				m.IncCacheHits()
			}
		case upload.PhaseCompleted:
			controller.ReplaceVideos(state.Videos)
			if m != nil {
				m.IncUploadsCompleted()
			}
		case upload.PhaseFailed:
			if m != nil {
				m.IncUploadsFailed()
			}
		}
	})
}
