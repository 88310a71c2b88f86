package repositories

import (
	"context"

	"blockwriter/internal/domain/models"
)

// ProfileRepository stores the academic profile fields keyed by user id
type ProfileRepository interface {
	// Get returns the stored profile or ErrNotFound when none exists yet
	Get(ctx context.Context, userID string) (*models.UserProfile, error)

	// Upsert creates or updates university and major
	Upsert(ctx context.Context, profile *models.UserProfile) error
}
