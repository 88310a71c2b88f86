package repositories

import (
	"context"

	"blockwriter/internal/domain/models"
)

// ExperienceRepository defines data access operations for experiences
type ExperienceRepository interface {
	// Create inserts an experience
	Create(ctx context.Context, exp *models.Experience) error

	// GetByID retrieves an experience owned by the user
	GetByID(ctx context.Context, id, userID string) (*models.Experience, error)

	// List returns the user's experiences matching the filter, newest first
	List(ctx context.Context, userID string, filter models.ExperienceFilter) ([]models.Experience, error)

	// Update overwrites title, content and category
	Update(ctx context.Context, exp *models.Experience) error

	// Delete removes an experience
	Delete(ctx context.Context, id, userID string) error

	// Categories returns the distinct non-empty categories in use
	Categories(ctx context.Context, userID string) ([]string, error)
}
