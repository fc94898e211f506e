package handler

import (
	"log/slog"
	"net/http"

	"notable/internal/config"
	"notable/internal/domain/models"
	"notable/internal/httputil"
	"notable/internal/service/ingest"
)

type MediaHandler struct {
	pipeline *ingest.Pipeline
	logger   *slog.Logger
}

func NewMediaHandler(pipeline *ingest.Pipeline, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{pipeline: pipeline, logger: logger}
}

type uploadResponse struct {
	Note     *models.Note  `json:"note"`
	NewMedia *models.Media `json:"newMedia"`
}

// Upload handles POST /api/notes/{id}/media (multipart, field "file")
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)
	noteID := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	note, media, err := h.pipeline.Upload(r.Context(), id.UserID, noteID, header.Filename, mimeType, file)
	if err != nil {
		handleError(w, h.logger, "media", err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, uploadResponse{Note: note, NewMedia: media})
}

// Get handles GET /api/notes/{id}/media/{mediaId}
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)
	noteID := r.PathValue("id")
	mediaID := r.PathValue("mediaId")

	media, err := h.pipeline.GetMedia(r.Context(), id.UserID, noteID, mediaID)
	if err != nil {
		handleError(w, h.logger, "media", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, media)
}

// Delete handles DELETE /api/notes/{id}/media/{mediaId}
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)
	noteID := r.PathValue("id")
	mediaID := r.PathValue("mediaId")

	note, err := h.pipeline.DeleteMedia(r.Context(), id.UserID, noteID, mediaID)
	if err != nil {
		handleError(w, h.logger, "media", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}
