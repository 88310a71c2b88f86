package handler

import (
	"log/slog"
	"net/http"

	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/services"
	"blockwriter/internal/httputil"
)

// ExperienceHandler handles experience repository HTTP requests
type ExperienceHandler struct {
	experienceService services.ExperienceService
	logger            *slog.Logger
}

// NewExperienceHandler creates a new experience handler
func NewExperienceHandler(experienceService services.ExperienceService, logger *slog.Logger) *ExperienceHandler {
	return &ExperienceHandler{
		experienceService: experienceService,
		logger:            logger,
	}
}

type updateExperienceBody struct {
	Title    *string                 `json:"title"`
	Content  *string                 `json:"content"`
	Category httputil.OptionalString `json:"category"`
}

// ListExperiences lists experiences, optionally filtered
// GET /api/experiences?source=&category=
func (h *ExperienceHandler) ListExperiences(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ExperienceFilter{
		Source:   models.ExperienceSource(q.Get("source")),
		Category: q.Get("category"),
	}

	experiences, err := h.experienceService.ListExperiences(r.Context(), httputil.GetUserID(r), filter)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"experiences": experiences})
}

// ListCategories lists distinct categories
// GET /api/experiences/categories
func (h *ExperienceHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.experienceService.ListCategories(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// CreateExperience registers a manual experience
// POST /api/experiences
func (h *ExperienceHandler) CreateExperience(w http.ResponseWriter, r *http.Request) {
	var req services.CreateExperienceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	req.UserID = httputil.GetUserID(r)

	exp, err := h.experienceService.CreateExperience(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, exp)
}

// GetExperience retrieves one experience
// GET /api/experiences/{id}
func (h *ExperienceHandler) GetExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Experience ID")
	if !ok {
		return
	}

	exp, err := h.experienceService.GetExperience(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, exp)
}

// UpdateExperience edits a manual experience
// PUT /api/experiences/{id}
func (h *ExperienceHandler) UpdateExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Experience ID")
	if !ok {
		return
	}

	var body updateExperienceBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		respondInvalidBody(w)
		return
	}

	exp, err := h.experienceService.UpdateExperience(r.Context(), httputil.GetUserID(r), id, &services.UpdateExperienceRequest{
		Title:    body.Title,
		Content:  body.Content,
		Category: body.Category.Field(),
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, exp)
}

// DeleteExperience deletes a manual experience
// DELETE /api/experiences/{id}
func (h *ExperienceHandler) DeleteExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Experience ID")
	if !ok {
		return
	}

	if err := h.experienceService.DeleteExperience(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, successResponse{Success: true})
}
