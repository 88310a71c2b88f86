package handler

import (
	"log/slog"
	"net/http"

	"blockwriter/internal/domain/services"
	"blockwriter/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

type updateFolderBody struct {
	Name     *string                 `json:"name"`
	ParentID httputil.OptionalString `json:"parentId"`
}

// ListFolders lists the caller's folders with document counts
// GET /api/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderService.ListFolders(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"folders": folders})
}

// CreateFolder creates a new folder
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	req.UserID = httputil.GetUserID(r)

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// UpdateFolder renames or moves a folder
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	var body updateFolderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		respondInvalidBody(w)
		return
	}

	folder, err := h.folderService.UpdateFolder(r.Context(), httputil.GetUserID(r), id, &services.UpdateFolderRequest{
		Name:     body.Name,
		ParentID: body.ParentID.Field(),
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder; its documents move to the root
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, successResponse{Success: true})
}
