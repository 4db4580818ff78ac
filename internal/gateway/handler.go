package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"climb-sync/internal/nav"
	"climb-sync/internal/platform/metrics"
	"climb-sync/internal/upload"
)

const defaultMaxUploadBytes = 500 << 20

// Handler exposes the session and the upload machine to the presentation
// layer over HTTP using go-chi.
type Handler struct {
	controller     *nav.Controller
	machine        *upload.Machine
	log            *slog.Logger
	metrics        *metrics.Metrics
	maxUploadBytes int64
}

// NewHandler returns a Handler. Metrics may be nil to disable metric
// recording (e.g. in tests). If maxUploadBytes <= 0 a 500MB default applies.
func NewHandler(controller *nav.Controller, machine *upload.Machine, log *slog.Logger, m *metrics.Metrics, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		controller:     controller,
		machine:        machine,
		log:            log,
		metrics:        m,
		maxUploadBytes: maxUploadBytes,
	}
}

// jobView is the job state as rendered to the presentation layer: stage name,
// numeric progress, and error text.
type jobView struct {
	Phase    string `json:"phase"`
	JobID    string `json:"jobId,omitempty"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

// sessionResponse is the full read surface: the navigation view plus the job.
type sessionResponse struct {
	nav.View
	Job jobView `json:"job"`
}

func (h *Handler) sessionView() sessionResponse {
	state := h.machine.State()
	return sessionResponse{
		View: h.controller.View(),
		Job: jobView{
			Phase:    state.Phase.String(),
			JobID:    state.JobID,
			Progress: state.Progress,
			Error:    state.Reason,
		},
	}
}

// GetSession handles GET /api/session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.sessionView())
}

// SelectLimb handles POST /api/selection/limb. Body: { "limb": "L_HAND" }.
// Changing the limb always clears the active hold.
func (h *Handler) SelectLimb(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Limb string `json:"limb"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Limb == "" {
		h.respondError(w, http.StatusBadRequest, "limb is required")
		return
	}

	h.controller.SelectLimb(body.Limb)
	h.log.Debug("limb selected", "limb", body.Limb)
	h.respondJSON(w, http.StatusOK, h.sessionView())
}

// SelectHold handles POST /api/selection/hold. Body: { "hold": "A" }.
func (h *Handler) SelectHold(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Hold string `json:"hold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Hold == "" {
		h.respondError(w, http.StatusBadRequest, "hold is required")
		return
	}

	if err := h.controller.SelectHold(body.Hold); err != nil {
		if errors.Is(err, nav.ErrNoActiveLimb) {
			h.respondError(w, http.StatusConflict, "select a limb first")
			return
		}
		h.log.Error("select hold failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.log.Debug("hold selected", "hold", body.Hold)
	h.respondJSON(w, http.StatusOK, h.sessionView())
}

// Upload handles POST /api/upload with multipart body field "video". The file
// is buffered and handed to the upload machine; 202 means the attempt is
// running and its progress is visible in the session's job state.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1024)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.log.Warn("invalid multipart upload", "error", err)
		h.respondError(w, http.StatusBadRequest, "upload is malformed or exceeds the size limit")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		// No file chosen: inline, non-fatal, and nothing reaches the network.
		h.respondError(w, http.StatusBadRequest, "no video file selected")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.log.Error("failed to buffer upload", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// The attempt outlives this request, so it runs on its own context; the
	// machine owns cancellation.
	err = h.machine.Submit(context.Background(), upload.SelectedFile{
		Name:    header.Filename,
		Content: bytes.NewReader(content),
	})
	switch {
	case errors.Is(err, upload.ErrNoFileSelected):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, upload.ErrAttemptInProgress):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, upload.ErrMachineClosed):
		h.respondError(w, http.StatusServiceUnavailable, err.Error())
	case err != nil:
		h.log.Error("submit failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	default:
		h.respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}

// PlayerStatus handles POST /api/players/{index}/status.
// Body: { "status": "ready" } or { "status": "error" }.
func (h *Handler) PlayerStatus(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid status body")
		return
	}

	switch body.Status {
	case "ready":
		err = h.controller.PlayerReady(index)
	case "error":
		err = h.controller.PlayerError(index)
	default:
		h.respondError(w, http.StatusBadRequest, "status must be ready or error")
		return
	}

	if errors.Is(err, nav.ErrNoSuchPlayer) {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.log.Error("player status failed", "index", index, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.log.Debug("player status", "index", index, "status", body.Status)
	h.respondJSON(w, http.StatusOK, h.sessionView())
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("failed to encode json", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, code int, message string) {
	h.respondJSON(w, code, map[string]string{"error": message})
}
