package handler

import (
	"io"
	"log/slog"
	"net/http"

	"notable/internal/config"
	"notable/internal/domain/models"
	"notable/internal/httputil"
	"notable/internal/service/ingest"
)

// TranscriptHandler serves the synchronous extraction endpoints: the caller
// waits for the transcript instead of polling the media record.
type TranscriptHandler struct {
	pipeline *ingest.Pipeline
	logger   *slog.Logger
}

func NewTranscriptHandler(pipeline *ingest.Pipeline, logger *slog.Logger) *TranscriptHandler {
	return &TranscriptHandler{pipeline: pipeline, logger: logger}
}

type transcriptResponse struct {
	Transcript *models.Transcript `json:"transcript"`
	Summary    *string            `json:"summary"`
}

// GetTranscript handles POST /api/getTranscript (multipart file + mediaId)
func (h *TranscriptHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	mediaID := r.FormValue("mediaId")
	if mediaID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "mediaId field is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "read upload failed")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	media, err := h.pipeline.ProcessSync(r.Context(), id.UserID, mediaID, mimeType, payload)
	if err != nil {
		handleError(w, h.logger, "transcript", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, transcriptResponse{
		Transcript: media.Transcript,
		Summary:    media.Summary,
	})
}

// GetAudioTranscription handles POST /api/getAudioTranscription
// (form fields: mediaId, audioUrl)
func (h *TranscriptHandler) GetAudioTranscription(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)

	if err := r.ParseForm(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	mediaID := r.FormValue("mediaId")
	if mediaID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "mediaId field is required")
		return
	}
	audioURL := r.FormValue("audioUrl")

	media, err := h.pipeline.TranscribeAudio(r.Context(), id.UserID, mediaID, audioURL)
	if err != nil {
		handleError(w, h.logger, "transcript", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, transcriptResponse{
		Transcript: media.Transcript,
		Summary:    media.Summary,
	})
}
