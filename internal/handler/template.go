package handler

import (
	"log/slog"
	"net/http"

	"blockwriter/internal/domain/services"
	"blockwriter/internal/httputil"
)

// TemplateHandler handles template HTTP requests
type TemplateHandler struct {
	templateService services.TemplateService
	logger          *slog.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService services.TemplateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		logger:          logger,
	}
}

// ListTemplates lists presets and, for signed-in callers, their own templates
// GET /api/templates?includePresets=false
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	includePresets := r.URL.Query().Get("includePresets") != "false"

	templates, err := h.templateService.ListTemplates(r.Context(), httputil.GetUserID(r), includePresets)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"templates": templates})
}

// CreateTemplate creates a user template
// POST /api/templates
func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req services.TemplateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	req.UserID = httputil.GetUserID(r)

	tmpl, err := h.templateService.CreateTemplate(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, tmpl)
}

// UpdateTemplate replaces a user template; presets are read-only
// PUT /api/templates/{id}
func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Template ID")
	if !ok {
		return
	}

	var req services.TemplateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	userID := httputil.GetUserID(r)
	req.UserID = userID

	tmpl, err := h.templateService.UpdateTemplate(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tmpl)
}

// DeleteTemplate deletes a user template
// DELETE /api/templates/{id}
func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Template ID")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, successResponse{Success: true})
}
