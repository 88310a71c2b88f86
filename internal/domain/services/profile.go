package services

import (
	"context"

	"blockwriter/internal/domain/models"
)

// ProfileService reads and updates the caller's profile
type ProfileService interface {
	// GetProfile merges token identity with stored fields; missing rows yield an empty profile
	GetProfile(ctx context.Context, identity models.Identity) (*models.UserProfile, error)

	// UpdateProfile applies trimmed values; blank strings are stored as NULL
	UpdateProfile(ctx context.Context, identity models.Identity, req *UpdateProfileRequest) (*models.UserProfile, error)
}

// UpdateProfileRequest carries partial profile edits
type UpdateProfileRequest struct {
	University OptionalField
	Major      OptionalField
}
