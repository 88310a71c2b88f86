package repositories

import (
	"context"

	"blockwriter/internal/domain/models"
)

// TemplateRepository stores user-defined templates. Presets are not stored.
type TemplateRepository interface {
	Create(ctx context.Context, tmpl *models.Template) error
	GetByID(ctx context.Context, id, userID string) (*models.Template, error)
	List(ctx context.Context, userID string) ([]models.Template, error)
	Update(ctx context.Context, tmpl *models.Template) error
	Delete(ctx context.Context, id, userID string) error
}
