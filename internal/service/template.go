package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"blockwriter/internal/blocks"
	"blockwriter/internal/config"
	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
	"blockwriter/internal/domain/services"
)

const (
	msgTemplateRequired   = "名前とブロック構成は必須です"
	msgTemplateNotFound   = "テンプレートが見つかりません"
	msgPresetNotEditable  = "プリセットテンプレートは編集できません"
	msgPresetNotDeletable = "プリセットテンプレートは削除できません"
)

type templateService struct {
	templateRepo repositories.TemplateRepository
	catalog      *blocks.Catalog
	logger       *slog.Logger
}

// NewTemplateService creates a template service. Presets come from the embedded catalog.
func NewTemplateService(
	templateRepo repositories.TemplateRepository,
	logger *slog.Logger,
) services.TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		catalog:      blocks.Default(),
		logger:       logger,
	}
}

// ListTemplates returns presets first, then the user's own templates
func (s *templateService) ListTemplates(ctx context.Context, userID string, includePresets bool) ([]models.Template, error) {
	result := []models.Template{}
	if includePresets {
		result = append(result, s.catalog.Presets()...)
	}
	if userID == "" {
		return result, nil
	}

	own, err := s.templateRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return append(result, own...), nil
}

// GetTemplate resolves a preset id or one of the user's templates
func (s *templateService) GetTemplate(ctx context.Context, userID, id string) (*models.Template, error) {
	if preset, ok := s.catalog.Preset(id); ok {
		return &preset, nil
	}
	if userID == "" {
		return nil, &domain.NotFoundError{Message: msgTemplateNotFound}
	}

	tmpl, err := s.templateRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, templateNotFound(err)
	}
	return tmpl, nil
}

// CreateTemplate stores a user template
func (s *templateService) CreateTemplate(ctx context.Context, req *services.TemplateRequest) (*models.Template, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	userID := req.UserID
	tmpl := &models.Template{
		ID:          uuid.New().String(),
		UserID:      &userID,
		Name:        strings.TrimSpace(req.Name),
		Description: normalizeText(req.Description),
		Blocks:      s.withLabels(req.Blocks),
		CreatedAt:   &now,
	}

	if err := s.templateRepo.Create(ctx, tmpl); err != nil {
		return nil, err
	}

	s.logger.Info("template created",
		"id", tmpl.ID,
		"name", tmpl.Name,
		"user_id", userID,
		"blocks", len(tmpl.Blocks),
	)

	return tmpl, nil
}

// UpdateTemplate replaces name, description and blocks of a user template
func (s *templateService) UpdateTemplate(ctx context.Context, userID, id string, req *services.TemplateRequest) (*models.Template, error) {
	if s.catalog.IsPreset(id) {
		return nil, &domain.ForbiddenError{Message: msgPresetNotEditable}
	}
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	tmpl, err := s.templateRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, templateNotFound(err)
	}

	tmpl.Name = strings.TrimSpace(req.Name)
	tmpl.Description = normalizeText(req.Description)
	tmpl.Blocks = s.withLabels(req.Blocks)

	if err := s.templateRepo.Update(ctx, tmpl); err != nil {
		return nil, templateNotFound(err)
	}

	s.logger.Info("template updated",
		"id", tmpl.ID,
		"name", tmpl.Name,
		"blocks", len(tmpl.Blocks),
	)

	return tmpl, nil
}

// DeleteTemplate deletes a user template
func (s *templateService) DeleteTemplate(ctx context.Context, userID, id string) error {
	if s.catalog.IsPreset(id) {
		return &domain.ForbiddenError{Message: msgPresetNotDeletable}
	}
	if err := s.templateRepo.Delete(ctx, id, userID); err != nil {
		return templateNotFound(err)
	}

	s.logger.Info("template deleted",
		"id", id,
		"user_id", userID,
	)

	return nil
}

func (s *templateService) validateRequest(req *services.TemplateRequest) error {
	if strings.TrimSpace(req.Name) == "" || len(req.Blocks) == 0 {
		return &domain.ValidationError{Message: msgTemplateRequired}
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.RuneLength(1, config.MaxTemplateNameLength)),
		validation.Field(&req.Blocks,
			validation.Length(1, config.MaxBlocksPerDocument),
			validation.Each(validation.By(func(v interface{}) error {
				b := v.(models.TemplateBlock)
				if err := validBlockType(b.Type); err != nil {
					return err
				}
				if b.Ratio < 0 || b.Ratio > 1 {
					return fmt.Errorf("ratio must be between 0 and 1")
				}
				return nil
			})),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// withLabels fills empty labels from the catalog
func (s *templateService) withLabels(in []models.TemplateBlock) []models.TemplateBlock {
	out := make([]models.TemplateBlock, len(in))
	for i, b := range in {
		if strings.TrimSpace(b.Label) == "" {
			b.Label = s.catalog.Label(b.Type)
		}
		out[i] = b
	}
	return out
}

// normalizeText trims s and maps blank values to nil
func normalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func templateNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.NotFoundError{Message: msgTemplateNotFound}
	}
	return err
}
