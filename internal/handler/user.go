package handler

import (
	"log/slog"
	"net/http"

	"notable/internal/domain/models"
	"notable/internal/domain/services"
	"notable/internal/httputil"
)

type UserHandler struct {
	users  services.UserService
	logger *slog.Logger
}

func NewUserHandler(users services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Get handles GET /api/user, lazily creating the user row on first access
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)

	user, err := h.users.EnsureUser(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, "user", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.UserProfile{Name: user.Name, Tokens: user.Tokens})
}

// Update handles PATCH /api/user
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)

	var req models.UpdateUserRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.UpdateName(r.Context(), id.UserID, req.Name)
	if err != nil {
		handleError(w, h.logger, "user", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.UserProfile{Name: user.Name, Tokens: user.Tokens})
}

// CreditTokens handles POST /api/tokens
func (h *UserHandler) CreditTokens(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)

	var req models.CreditTokensRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.users.CreditTokens(r.Context(), id.UserID, req.Amount); err != nil {
		handleError(w, h.logger, "user", err)
		return
	}

	user, err := h.users.EnsureUser(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, "user", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.UserProfile{Name: user.Name, Tokens: user.Tokens})
}
