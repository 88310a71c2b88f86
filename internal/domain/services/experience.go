package services

import (
	"context"

	"blockwriter/internal/domain/models"
)

// ExperienceService manages the user's experience repository
type ExperienceService interface {
	ListExperiences(ctx context.Context, userID string, filter models.ExperienceFilter) ([]models.Experience, error)
	GetExperience(ctx context.Context, userID, id string) (*models.Experience, error)

	// CreateExperience registers a manual experience
	CreateExperience(ctx context.Context, req *CreateExperienceRequest) (*models.Experience, error)

	// UpdateExperience edits a manual experience; auto-sourced ones are forbidden
	UpdateExperience(ctx context.Context, userID, id string, req *UpdateExperienceRequest) (*models.Experience, error)

	// DeleteExperience deletes a manual experience; auto-sourced ones are forbidden
	DeleteExperience(ctx context.Context, userID, id string) error

	// ListCategories returns distinct categories, sorted
	ListCategories(ctx context.Context, userID string) ([]string, error)
}

// CreateExperienceRequest represents a manual experience registration
type CreateExperienceRequest struct {
	UserID   string  `json:"-"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category *string `json:"category,omitempty"`
}

// UpdateExperienceRequest carries partial experience edits
type UpdateExperienceRequest struct {
	Title    *string
	Content  *string
	Category OptionalField
}
