package services

import (
	"context"

	"blockwriter/internal/domain/models"
)

// WritingService runs the generation pipeline: prompt, backend call, post-processing
type WritingService interface {
	// Compose merges block notes into one draft clamped to the target length
	Compose(ctx context.Context, req *ComposeRequest) (*models.Composition, error)

	// Hints generates per-block writing advice using the user's experiences
	Hints(ctx context.Context, req *HintsRequest) (*models.HintsData, error)

	// ListModels returns the backend's models
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// ComposeBlock is one block of composition input
type ComposeBlock struct {
	Type    models.BlockType `json:"type"`
	Label   string           `json:"label"`
	Content string           `json:"content"`
	Order   *int             `json:"order,omitempty"`
}

// ComposeRequest represents POST /api/ai/compose
type ComposeRequest struct {
	Blocks          []ComposeBlock       `json:"blocks"`
	Mode            models.WritingMode   `json:"mode"`
	TargetCharCount float64              `json:"targetCharCount"`
	DocumentType    *models.DocumentType `json:"documentType,omitempty"`
}

// HintBlock is one block of hints input
type HintBlock struct {
	Type  models.BlockType `json:"type"`
	Label string           `json:"label"`
	Order *int             `json:"order,omitempty"`
}

// HintsRequest represents POST /api/ai/hints
type HintsRequest struct {
	UserID          string               `json:"-"`
	Theme           string               `json:"theme"`
	Blocks          []HintBlock          `json:"blocks"`
	TargetCharCount float64              `json:"targetCharCount"`
	WritingMode     models.WritingMode   `json:"writingMode"`
	DocumentType    *models.DocumentType `json:"documentType,omitempty"`
}

// ModelInfo describes a backend model
type ModelInfo struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}
