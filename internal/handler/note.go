package handler

import (
	"log/slog"
	"net/http"

	"notable/internal/domain/models"
	"notable/internal/domain/services"
	"notable/internal/httputil"
	"notable/internal/service/compose"
)

type NoteHandler struct {
	notes    services.NoteService
	composer *compose.Composer
	logger   *slog.Logger
}

func NewNoteHandler(notes services.NoteService, composer *compose.Composer, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, composer: composer, logger: logger}
}

// List handles GET /api/notes
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)

	notes, err := h.notes.ListNotes(r.Context(), id.UserID)
	if err != nil {
		handleError(w, h.logger, "note", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notes)
}

// Get handles GET /api/notes/{id}
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)
	noteID := r.PathValue("id")

	note, err := h.notes.GetNote(r.Context(), id.UserID, noteID)
	if err != nil {
		handleError(w, h.logger, "note", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

// Create handles POST /api/notes
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)

	var req models.CreateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.notes.CreateNote(r.Context(), id.UserID, &req)
	if err != nil {
		handleError(w, h.logger, "note", err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, note)
}

// Update handles PATCH /api/notes/{id}. Unknown ids upsert.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)
	noteID := r.PathValue("id")

	var req models.UpdateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.notes.UpdateNote(r.Context(), id.UserID, noteID, &req)
	if err != nil {
		handleError(w, h.logger, "note", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

// Delete handles DELETE /api/notes/{id}
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)
	noteID := r.PathValue("id")

	if err := h.notes.DeleteNote(r.Context(), id.UserID, noteID); err != nil {
		handleError(w, h.logger, "note", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type composeSummaryRequest struct {
	MediaIDs []string `json:"mediaIds"`
}

// ComposeSummary handles POST /api/notes/{id}/summary
func (h *NoteHandler) ComposeSummary(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)
	noteID := r.PathValue("id")

	var req composeSummaryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.composer.ComposeSummary(r.Context(), id.UserID, noteID, req.MediaIDs)
	if err != nil {
		handleError(w, h.logger, "compose", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"summary": summary})
}
