package handler

import (
	"log/slog"
	"net/http"

	"blockwriter/internal/domain/services"
	"blockwriter/internal/httputil"
)

// AIHandler exposes the generation pipeline
type AIHandler struct {
	writingService services.WritingService
	logger         *slog.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(writingService services.WritingService, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		writingService: writingService,
		logger:         logger,
	}
}

// Compose merges block notes into one draft
// POST /api/ai/compose
func (h *AIHandler) Compose(w http.ResponseWriter, r *http.Request) {
	var req services.ComposeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}

	result, err := h.writingService.Compose(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Hints generates per-block writing advice
// POST /api/ai/hints
func (h *AIHandler) Hints(w http.ResponseWriter, r *http.Request) {
	var req services.HintsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondInvalidBody(w)
		return
	}
	req.UserID = httputil.GetUserID(r)

	hints, err := h.writingService.Hints(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, hints)
}

// ListModels lists the generation backend's models
// GET /api/ai/models
func (h *AIHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.writingService.ListModels(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if models == nil {
		models = []services.ModelInfo{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"models": models})
}
