package handler

import (
	"log/slog"
	"net/http"

	"notable/internal/domain/models"
	"notable/internal/domain/services"
	"notable/internal/httputil"
)

type FolderHandler struct {
	folders services.FolderService
	logger  *slog.Logger
}

func NewFolderHandler(folders services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{folders: folders, logger: logger}
}

// List handles GET /api/folders
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)

	forest, err := h.folders.ListFolders(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, "folder", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, forest)
}

// Create handles POST /api/folders
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)

	var req models.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folders.CreateFolder(r.Context(), id.UserID, &req)
	if err != nil {
		handleError(w, h.logger, "folder", err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// Rename handles PATCH /api/folders/{id}
func (h *FolderHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)
	folderID := r.PathValue("id")

	var req models.RenameFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folders.RenameFolder(r.Context(), id.UserID, folderID, req.Name)
	if err != nil {
		handleError(w, h.logger, "folder", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// SetOpened handles PUT /api/folders/{id}
func (h *FolderHandler) SetOpened(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)
	folderID := r.PathValue("id")

	var req models.SetOpenedRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folders.SetOpened(r.Context(), id.UserID, folderID, req.Opened)
	if err != nil {
		handleError(w, h.logger, "folder", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// Delete handles DELETE /api/folders/{id}
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetIdentity(r)
	folderID := r.PathValue("id")

	if err := h.folders.DeleteFolder(r.Context(), id.UserID, folderID); err != nil {
		handleError(w, h.logger, "folder", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
