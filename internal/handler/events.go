package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"notable/internal/domain/services"
	"notable/internal/httputil"
	"notable/internal/notify"
)

// EventsHandler streams a note's realtime events over SSE. Delivery is best
// effort; clients reconcile by re-fetching the note.
type EventsHandler struct {
	notes  services.NoteService
	hub    *notify.Hub
	logger *slog.Logger
}

func NewEventsHandler(notes services.NoteService, hub *notify.Hub, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{notes: notes, hub: hub, logger: logger}
}

// Stream handles GET /api/notes/{id}/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)
	noteID := r.PathValue("id")

	if _, err := h.notes.GetNote(r.Context(), id.UserID, noteID); err != nil {
		handleError(w, h.logger, "events", err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, cancel := h.hub.Subscribe(noteID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
			flusher.Flush()
		}
	}
}
