package handler

import (
	"log/slog"
	"net/http"

	"blockwriter/internal/domain/services"
	"blockwriter/internal/httputil"
)

// ProfileHandler serves the caller's profile
type ProfileHandler struct {
	profileService services.ProfileService
	logger         *slog.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService services.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

type updateProfileBody struct {
	University httputil.OptionalString `json:"university"`
	Major      httputil.OptionalString `json:"major"`
}

// GetProfile returns the caller's profile
// GET /api/users/me/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.GetProfile(r.Context(), httputil.GetIdentity(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}

// UpdateProfile edits university and major
// PATCH /api/users/me/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body updateProfileBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		respondInvalidBody(w)
		return
	}

	profile, err := h.profileService.UpdateProfile(r.Context(), httputil.GetIdentity(r), &services.UpdateProfileRequest{
		University: body.University.Field(),
		Major:      body.Major.Field(),
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}
