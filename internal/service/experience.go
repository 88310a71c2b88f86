package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"blockwriter/internal/config"
	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
	"blockwriter/internal/domain/services"
)

const (
	msgExperienceRequired     = "title と content は必須です"
	msgExperienceNotFound     = "経験データが見つかりません"
	msgAutoExperienceReadOnly = "自動蓄積データは編集できません"
	msgAutoExperienceNoDelete = "自動蓄積データは削除できません"
)

type experienceService struct {
	experienceRepo repositories.ExperienceRepository
	logger         *slog.Logger
}

// NewExperienceService creates a new experience service
func NewExperienceService(
	experienceRepo repositories.ExperienceRepository,
	logger *slog.Logger,
) services.ExperienceService {
	return &experienceService{
		experienceRepo: experienceRepo,
		logger:         logger,
	}
}

// ListExperiences returns the user's experiences, most recently updated first
func (s *experienceService) ListExperiences(ctx context.Context, userID string, filter models.ExperienceFilter) ([]models.Experience, error) {
	err := validation.ValidateStruct(&filter,
		validation.Field(&filter.Source, validation.In(models.ExperienceSourceManual, models.ExperienceSourceAuto)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	exps, err := s.experienceRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list experiences: %w", err)
	}
	if exps == nil {
		exps = []models.Experience{}
	}
	return exps, nil
}

// GetExperience retrieves one experience
func (s *experienceService) GetExperience(ctx context.Context, userID, id string) (*models.Experience, error) {
	exp, err := s.experienceRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, experienceNotFound(err)
	}
	return exp, nil
}

// CreateExperience registers a manual experience
func (s *experienceService) CreateExperience(ctx context.Context, req *services.CreateExperienceRequest) (*models.Experience, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if err := validateExperienceText(title, content); err != nil {
		return nil, err
	}

	now := time.Now()
	exp := &models.Experience{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Title:     title,
		Content:   content,
		Category:  normalizeText(req.Category),
		Source:    models.ExperienceSourceManual,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.experienceRepo.Create(ctx, exp); err != nil {
		return nil, err
	}

	s.logger.Info("experience created",
		"id", exp.ID,
		"user_id", exp.UserID,
		"category", exp.Category,
	)

	return exp, nil
}

// UpdateExperience edits a manual experience
func (s *experienceService) UpdateExperience(ctx context.Context, userID, id string, req *services.UpdateExperienceRequest) (*models.Experience, error) {
	exp, err := s.GetExperience(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if exp.Source == models.ExperienceSourceAuto {
		return nil, &domain.ForbiddenError{Message: msgAutoExperienceReadOnly}
	}

	if req.Title != nil {
		exp.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		exp.Content = strings.TrimSpace(*req.Content)
	}
	if err := validateExperienceText(exp.Title, exp.Content); err != nil {
		return nil, err
	}
	if req.Category.Present {
		exp.Category = normalizeText(req.Category.Value)
	}
	exp.UpdatedAt = time.Now()

	if err := s.experienceRepo.Update(ctx, exp); err != nil {
		return nil, experienceNotFound(err)
	}

	s.logger.Info("experience updated",
		"id", exp.ID,
		"user_id", userID,
	)

	return exp, nil
}

// DeleteExperience deletes a manual experience
func (s *experienceService) DeleteExperience(ctx context.Context, userID, id string) error {
	exp, err := s.GetExperience(ctx, userID, id)
	if err != nil {
		return err
	}
	if exp.Source == models.ExperienceSourceAuto {
		return &domain.ForbiddenError{Message: msgAutoExperienceNoDelete}
	}

	if err := s.experienceRepo.Delete(ctx, id, userID); err != nil {
		return experienceNotFound(err)
	}

	s.logger.Info("experience deleted",
		"id", id,
		"user_id", userID,
	)

	return nil
}

// ListCategories returns the distinct categories the user has used, sorted
func (s *experienceService) ListCategories(ctx context.Context, userID string) ([]string, error) {
	cats, err := s.experienceRepo.Categories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cats == nil {
		cats = []string{}
	}
	sort.Strings(cats)
	return cats, nil
}

func validateExperienceText(title, content string) error {
	if title == "" || content == "" {
		return &domain.ValidationError{Message: msgExperienceRequired}
	}
	err := validation.Validate(title, validation.RuneLength(1, config.MaxExperienceTitleLength))
	if err != nil {
		return fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
	}
	return nil
}

func experienceNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.NotFoundError{Message: msgExperienceNotFound}
	}
	return err
}
