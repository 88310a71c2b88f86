package repositories

import (
	"context"

	"blockwriter/internal/domain/models"
)

// DocumentRepository defines data access operations for documents and their blocks.
// Every method is scoped by owner; a document owned by someone else is reported as not found.
type DocumentRepository interface {
	// Create inserts the document row and its blocks
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a document with its blocks ordered by position
	GetByID(ctx context.Context, id, userID string) (*models.Document, error)

	// List returns one page of the user's document summaries, most recently updated first,
	// together with the total number of matching documents
	List(ctx context.Context, userID string, opts DocumentListOptions) ([]models.DocumentSummary, int, error)

	// Update overwrites document metadata (last write wins)
	Update(ctx context.Context, doc *models.Document) error

	// ReplaceBlocks deletes the document's blocks and inserts the given set
	ReplaceBlocks(ctx context.Context, documentID string, blocks []models.Block) error

	// Delete removes the document; blocks cascade
	Delete(ctx context.Context, id, userID string) error

	// DetachFolder moves every document in the folder back to the root
	DetachFolder(ctx context.Context, folderID, userID string) error
}

// DocumentListOptions filters and paginates DocumentRepository.List
type DocumentListOptions struct {
	FolderID *string // nil = every folder
	Limit    int
	Offset   int
}
