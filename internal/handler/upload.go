package handler

import (
	"context"
	"log/slog"
	"net/http"

	models "dropzone/internal/domain/models/drive"
	driveSvc "dropzone/internal/domain/services/drive"
	"dropzone/internal/handler/sse"
	"dropzone/internal/httputil"

	"github.com/google/uuid"
	mstream "github.com/haowjy/meridian-stream-go"
)

// UploadHandler handles upload session requests and the progress stream
type UploadHandler struct {
	uploadService driveSvc.UploadService
	registry      *mstream.Registry
	sseConfig     *sse.Config
	logger        *slog.Logger
}

// NewUploadHandler creates a new upload handler. registry holds the streams
// of running sessions. A nil sseConfig uses sse.DefaultConfig.
func NewUploadHandler(
	uploadService driveSvc.UploadService,
	registry *mstream.Registry,
	sseConfig *sse.Config,
	logger *slog.Logger,
) *UploadHandler {
	if sseConfig == nil {
		sseConfig = sse.DefaultConfig()
	}
	return &UploadHandler{
		uploadService: uploadService,
		registry:      registry,
		sseConfig:     sseConfig,
		logger:        logger,
	}
}

// StartUpload validates a batch and starts its progress tasks
// POST /api/uploads
// Returns 201 with the session, accepted files and rejected files
func (h *UploadHandler) StartUpload(w http.ResponseWriter, r *http.Request) {
	var req driveSvc.StartUploadRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.uploadService.StartUpload(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// ListSessions returns the upload sessions still retained
// GET /api/uploads
func (h *UploadHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.uploadService.ListSessions(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sessions)
}

// GetSession returns one upload session
// GET /api/uploads/{id}
func (h *UploadHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Upload")
	if !ok {
		return
	}

	session, err := h.uploadService.GetSession(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, session)
}

// CancelUpload stops every running file of a session
// POST /api/uploads/{id}/cancel
func (h *UploadHandler) CancelUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Upload")
	if !ok {
		return
	}

	session, err := h.uploadService.CancelUpload(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, session)
}

// DeleteSession cancels a session if needed and removes it
// DELETE /api/uploads/{id}
func (h *UploadHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Upload")
	if !ok {
		return
	}

	if err := h.uploadService.DeleteSession(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StreamEvents streams progress events of one session via SSE.
// GET /api/uploads/{id}/events
//
// The stream opens with catchup built from the store: a "session" snapshot
// and one "progress" event per file. Live "progress" events follow, and a
// "done" event carrying the finished session closes the stream.
func (h *UploadHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Upload")
	if !ok {
		return
	}

	session, err := h.uploadService.GetSession(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	writer, err := sse.NewEventWriter(w, uuid.New().String())
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger := h.logger.With("session_id", id, "client_id", writer.ClientID())
	logger.Info("upload stream connected")
	defer logger.Info("upload stream closed")

	stream := h.registry.Get(id)
	if stream == nil {
		// Stream already cleaned up: report the stored session and stop
		if err := writer.WriteEvent(models.UploadEventSession, session); err != nil || !session.Done() {
			return
		}
		_ = writer.WriteEvent(models.UploadEventDone, session)
		return
	}

	// Register before catchup so no live event falls between the two
	events := stream.AddClient(writer.ClientID())
	defer stream.RemoveClient(writer.ClientID())

	catchup, err := stream.GetCatchupEvents(r.Header.Get("Last-Event-ID"))
	if err != nil {
		logger.Warn("catchup failed, client will receive live events only", "error", err)
		if err := writer.WriteEvent(models.UploadEventSession, session); err != nil {
			return
		}
	}
	for _, event := range catchup {
		if err := writer.WriteStreamEvent(event); err != nil {
			logger.Warn("catchup write failed", "error", err)
			return
		}
		if event.Type == models.UploadEventDone {
			return
		}
	}

	streamCtx, stopStream := context.WithCancel(r.Context())
	defer stopStream()
	stopped := sse.StartKeepAlive(streamCtx, h.sseConfig.KeepAliveInterval, writer, logger)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-stopped:
			return
		case event, ok := <-events:
			if !ok {
				// Stream finished, cancelled or cleaned up
				return
			}
			if err := writer.WriteStreamEvent(event); err != nil {
				logger.Warn("event write failed", "error", err)
				return
			}
			if event.Type == models.UploadEventDone {
				return
			}
		}
	}
}
