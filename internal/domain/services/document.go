package services

import (
	"context"

	"blockwriter/internal/domain/models"
)

// DocumentService handles document and block business logic
type DocumentService interface {
	// CreateDocument creates a document populated with template blocks (PREP by default)
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)

	// GetDocument retrieves a document with its blocks
	GetDocument(ctx context.Context, userID, documentID string) (*models.Document, error)

	// ListDocuments returns document summaries with content character counts
	ListDocuments(ctx context.Context, userID string, req *ListDocumentsRequest) (*DocumentList, error)

	// UpdateDocument overwrites metadata and, when blocks are supplied, replaces them wholesale
	UpdateDocument(ctx context.Context, userID, documentID string, req *UpdateDocumentRequest) (*models.Document, error)

	// DeleteDocument deletes a document and its blocks
	DeleteDocument(ctx context.Context, userID, documentID string) error

	// AddBlock inserts a new empty block and re-allocates targets
	AddBlock(ctx context.Context, userID, documentID string, req *AddBlockRequest) (*models.Document, error)

	// RemoveBlock deletes a block and re-allocates targets
	RemoveBlock(ctx context.Context, userID, documentID, blockID string) (*models.Document, error)

	// ReorderBlocks moves the active block to the position of the over block
	ReorderBlocks(ctx context.Context, userID, documentID string, req *ReorderBlocksRequest) (*models.Document, error)
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	UserID          string               `json:"-"` // Set by handler from auth context, not from request body
	Title           string               `json:"title"`
	TargetCharCount int                  `json:"targetCharCount"` // <= 0 means default
	WritingMode     models.WritingMode   `json:"writingMode"`
	DocumentType    *models.DocumentType `json:"documentType,omitempty"`
	FolderID        *string              `json:"folderId,omitempty"`
	TemplateID      *string              `json:"templateId,omitempty"` // preset or user template; PREP when omitted
}

// ListDocumentsRequest filters and paginates the document list
type ListDocumentsRequest struct {
	FolderID *string // nil = all folders
	Limit    int     // default 20, max 100
	Offset   int
}

// DocumentList is the document list response
type DocumentList struct {
	Documents []models.DocumentSummary `json:"documents"`
	Total     int                      `json:"total"`
}

// BlockInput is a client-supplied block. Target counts are recomputed server-side.
type BlockInput struct {
	ID      string           `json:"id,omitempty"`
	Type    models.BlockType `json:"type"`
	Label   string           `json:"label"`
	Content string           `json:"content"`
	Order   *int             `json:"order,omitempty"`
}

// UpdateDocumentRequest represents a document save. Nil fields keep their current value.
type UpdateDocumentRequest struct {
	Title           *string
	TargetCharCount *int
	WritingMode     *models.WritingMode
	DocumentType    OptionalField
	FolderID        OptionalField
	Blocks          []BlockInput // nil = keep blocks
}

// AddBlockRequest adds a block of Type at Index (append when nil)
type AddBlockRequest struct {
	Type  models.BlockType `json:"type"`
	Index *int             `json:"index,omitempty"`
}

// ReorderBlocksRequest moves ActiveID to the slot currently held by OverID
type ReorderBlocksRequest struct {
	ActiveID string `json:"activeId"`
	OverID   string `json:"overId"`
}
