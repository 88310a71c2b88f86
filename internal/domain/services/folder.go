package services

import (
	"context"

	"blockwriter/internal/domain/models"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a new folder
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// ListFolders lists the user's folders with document counts
	ListFolders(ctx context.Context, userID string) ([]models.Folder, error)

	// UpdateFolder renames or moves a folder
	UpdateFolder(ctx context.Context, userID, id string, req *UpdateFolderRequest) (*models.Folder, error)

	// DeleteFolder deletes a folder, moving its documents to the root
	DeleteFolder(ctx context.Context, userID, id string) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	UserID   string  `json:"-"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"` // null for root folders
}

// UpdateFolderRequest represents a folder update request
type UpdateFolderRequest struct {
	Name     *string       // rename
	ParentID OptionalField // move (null for root)
}
