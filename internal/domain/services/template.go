package services

import (
	"context"

	"blockwriter/internal/domain/models"
)

// TemplateService exposes preset and user templates
type TemplateService interface {
	// ListTemplates returns presets (when requested) followed by the user's templates.
	// An empty userID returns presets only.
	ListTemplates(ctx context.Context, userID string, includePresets bool) ([]models.Template, error)

	// GetTemplate resolves a preset or user template by id
	GetTemplate(ctx context.Context, userID, id string) (*models.Template, error)

	CreateTemplate(ctx context.Context, req *TemplateRequest) (*models.Template, error)
	UpdateTemplate(ctx context.Context, userID, id string, req *TemplateRequest) (*models.Template, error)
	DeleteTemplate(ctx context.Context, userID, id string) error
}

// TemplateRequest is used for both create and full update
type TemplateRequest struct {
	UserID      string                 `json:"-"`
	Name        string                 `json:"name"`
	Description *string                `json:"description,omitempty"`
	Blocks      []models.TemplateBlock `json:"blocks"`
}
