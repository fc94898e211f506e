package handler

import (
	"log/slog"
	"net/http"

	"notable/internal/domain/models"
	"notable/internal/domain/services"
	"notable/internal/httputil"
)

type ChatHandler struct {
	chats  services.ChatService
	logger *slog.Logger
}

func NewChatHandler(chats services.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, logger: logger}
}

// History handles GET /api/notes/{id}/chat
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)
	noteID := r.PathValue("id")

	messages, err := h.chats.History(r.Context(), id.UserID, noteID)
	if err != nil {
		handleError(w, h.logger, "chat", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, messages)
}

// Send handles POST /api/notes/{id}/chat
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)
	noteID := r.PathValue("id")

	var req models.ChatMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.chats.Send(r.Context(), id, noteID, req.Message)
	if err != nil {
		handleError(w, h.logger, "chat", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
