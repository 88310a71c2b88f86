// Package cli implements the blockctl commands over the allocator, prompt builder,
// clamp and generation client.
package cli

import (
	"io"
	"log/slog"

	"blockwriter/internal/blocks"
	serviceLLM "blockwriter/internal/service/llm"
	"blockwriter/internal/service/llm/gemini"
)

// GeneratorFactory builds the generative backend from resolved settings
type GeneratorFactory func(settings Settings, logger *slog.Logger) serviceLLM.TextGenerator

// App holds what the commands share. Settings are resolved before each command runs.
type App struct {
	Catalog      *blocks.Catalog
	NewGenerator GeneratorFactory
	Logger       *slog.Logger

	// Styled enables lipgloss tables; false prints plain tab-separated text
	Styled bool

	settings Settings
}

// NewApp creates an App that talks to Gemini
func NewApp(styled bool) *App {
	return &App{
		Catalog:      blocks.Default(),
		NewGenerator: GeminiGenerator,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Styled:       styled,
	}
}

// GeminiGenerator is the production GeneratorFactory
func GeminiGenerator(settings Settings, logger *slog.Logger) serviceLLM.TextGenerator {
	return gemini.NewClient(gemini.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	}, logger)
}
