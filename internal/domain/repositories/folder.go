package repositories

import (
	"context"

	"blockwriter/internal/domain/models"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id, userID string) (*models.Folder, error)

	// List returns the user's folders with document counts
	List(ctx context.Context, userID string) ([]models.Folder, error)

	// Update renames or moves a folder
	Update(ctx context.Context, folder *models.Folder) error

	// Delete deletes a folder
	Delete(ctx context.Context, id, userID string) error
}
