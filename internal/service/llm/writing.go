// Package llm wires the generation pipeline: prompt building, the Gemini call,
// and post-processing of hints and compositions.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blockwriter/internal/blocks"
	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
	"blockwriter/internal/domain/services"
	"blockwriter/internal/service/llm/gemini"
	"blockwriter/internal/service/llm/hints"
	"blockwriter/internal/service/llm/postprocess"
	"blockwriter/internal/service/llm/prompts"
)

// User-facing messages
const (
	msgMissingAPIKey  = "GEMINI_API_KEY が未設定です"
	msgThemeRequired  = "テーマを入力してください"
	msgBlocksRequired = "ブロック構成が必要です"
	msgBlocksMissing  = "blocks は必須です"
)

// TextGenerator is the generative backend used by the writing service.
// *gemini.Client implements it.
type TextGenerator interface {
	GenerateText(ctx context.Context, req gemini.GenerateRequest) (string, error)
	ListModels(ctx context.Context) ([]gemini.Model, error)
	Configured() bool
}

type writingService struct {
	generator      TextGenerator
	experienceRepo repositories.ExperienceRepository
	prompts        *prompts.Builder
	logger         *slog.Logger
}

// NewWritingService creates the compose/hints service
func NewWritingService(
	generator TextGenerator,
	experienceRepo repositories.ExperienceRepository,
	builder *prompts.Builder,
	logger *slog.Logger,
) services.WritingService {
	return &writingService{
		generator:      generator,
		experienceRepo: experienceRepo,
		prompts:        builder,
		logger:         logger,
	}
}

// Compose merges block notes into one draft clamped to the target length
func (s *writingService) Compose(ctx context.Context, req *services.ComposeRequest) (*models.Composition, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}
	if err := validation.Validate(req.Blocks, validation.NotNil.Error(msgBlocksMissing)); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	if err := s.validateDocumentType(req.DocumentType); err != nil {
		return nil, err
	}

	mode := req.Mode.Normalize()
	target := safeTarget(req.TargetCharCount)

	input := prompts.ComposeInput{
		Blocks:          make([]prompts.ComposeBlock, len(req.Blocks)),
		Mode:            mode,
		TargetCharCount: target,
		DocumentType:    req.DocumentType,
	}
	for i, b := range req.Blocks {
		input.Blocks[i] = prompts.ComposeBlock{
			Type:    blockTypeOrCustom(b.Type),
			Label:   b.Label,
			Content: b.Content,
			Order:   orderOrIndex(b.Order, i),
		}
	}

	raw, err := s.generate(ctx, s.prompts.BuildComposePrompt(input))
	if err != nil {
		return nil, err
	}

	text := postprocess.ClampToTarget(raw, target)
	charCount := utf8.RuneCountInString(text)
	if trimmed := utf8.RuneCountInString(raw) - charCount; trimmed > 0 {
		s.logger.Info("composition clamped",
			"target", target,
			"generated_chars", utf8.RuneCountInString(raw),
			"final_chars", charCount,
		)
	}

	return &models.Composition{
		ComposedText: text,
		CharCount:    charCount,
		Mode:         mode,
	}, nil
}

// Hints generates per-block advice, grounded in the caller's experiences
func (s *writingService) Hints(ctx context.Context, req *services.HintsRequest) (*models.HintsData, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}
	theme := strings.TrimSpace(req.Theme)
	if err := validation.Validate(theme, validation.Required.Error(msgThemeRequired)); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	if err := validation.Validate(req.Blocks, validation.Required.Error(msgBlocksRequired)); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	if err := s.validateDocumentType(req.DocumentType); err != nil {
		return nil, err
	}

	experiences, err := s.experienceRepo.List(ctx, req.UserID, models.ExperienceFilter{})
	if err != nil {
		return nil, err
	}

	input := prompts.HintsInput{
		Theme:           theme,
		Blocks:          make([]prompts.HintBlock, len(req.Blocks)),
		Experiences:     make([]prompts.Experience, len(experiences)),
		WritingMode:     req.WritingMode.Normalize(),
		TargetCharCount: safeTarget(req.TargetCharCount),
		DocumentType:    req.DocumentType,
	}
	fallback := make([]hints.FallbackBlock, len(req.Blocks))
	for i, b := range req.Blocks {
		blockType := blockTypeOrCustom(b.Type)
		order := orderOrIndex(b.Order, i)
		input.Blocks[i] = prompts.HintBlock{Type: blockType, Label: b.Label, Order: order}
		fallback[i] = hints.FallbackBlock{Type: blockType, Label: b.Label, Order: order}
	}
	for i, e := range experiences {
		input.Experiences[i] = prompts.Experience{
			ID:       e.ID,
			Title:    e.Title,
			Content:  e.Content,
			Category: e.Category,
		}
	}

	raw, err := s.generate(ctx, s.prompts.BuildHintsPrompt(input))
	if err != nil {
		return nil, err
	}

	data := hints.Parse(raw, fallback, len(experiences))
	if data.Overview == hints.FallbackOverview {
		s.logger.Warn("hints response could not be decoded, using fallback",
			"user_id", req.UserID,
			"response_chars", utf8.RuneCountInString(raw),
		)
	}
	data.Theme = theme
	return &data, nil
}

// ListModels returns the backend's models
func (s *writingService) ListModels(ctx context.Context) ([]services.ModelInfo, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}
	list, err := s.generator.ListModels(ctx)
	if err != nil {
		return nil, &domain.UpstreamError{Message: err.Error(), Err: err}
	}
	out := make([]services.ModelInfo, len(list))
	for i, m := range list {
		out[i] = services.ModelInfo{
			Name:                       m.Name,
			DisplayName:                m.DisplayName,
			SupportedGenerationMethods: m.SupportedGenerationMethods,
		}
	}
	return out, nil
}

// validateDocumentType rejects document types without a prompt modifier. Nil or empty means none.
func (s *writingService) validateDocumentType(dt *models.DocumentType) error {
	err := validation.Validate(dt, validation.By(func(v interface{}) error {
		t, _ := v.(*models.DocumentType)
		if t == nil || *t == "" || s.prompts.KnownDocumentType(*t) {
			return nil
		}
		return fmt.Errorf("unknown document type %q", *t)
	}))
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

func (s *writingService) requireConfigured() error {
	if !s.generator.Configured() {
		return &domain.ConfigError{Message: msgMissingAPIKey}
	}
	return nil
}

func (s *writingService) generate(ctx context.Context, prompt string) (string, error) {
	text, err := s.generator.GenerateText(ctx, gemini.GenerateRequest{
		Prompt:          prompt,
		Temperature:     gemini.DefaultTemperature,
		MaxOutputTokens: gemini.DefaultMaxOutputTokens,
	})
	if err != nil {
		s.logger.Error("generation failed", "error", err)
		return "", &domain.UpstreamError{Message: err.Error(), Err: err}
	}
	return text, nil
}

// safeTarget rounds positive targets and substitutes the default otherwise
func safeTarget(target float64) int {
	if target > 0 {
		if rounded := blocks.Round(target); rounded > 0 {
			return rounded
		}
	}
	return models.DefaultTargetCharCount
}

func blockTypeOrCustom(t models.BlockType) models.BlockType {
	if t == "" {
		return models.BlockTypeCustom
	}
	return t
}

func orderOrIndex(order *int, index int) int {
	if order != nil {
		return *order
	}
	return index
}
