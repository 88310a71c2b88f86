// Package gemini is a REST client for the Gemini generateContent and ListModels
// endpoints, with a single model-discovery fallback when the configured model is unusable.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the public Gemini API endpoint
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is used when neither the request nor the config names a model
	DefaultModel = "gemini-1.5-flash"
	// DefaultTimeout bounds a single HTTP exchange
	DefaultTimeout = 60 * time.Second

	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 2048

	apiKeyHeader = "x-goog-api-key"
)

// Config configures a Client. Zero values pick the defaults above.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client // overrides Timeout when set
}

// GenerateRequest is one text generation call.
type GenerateRequest struct {
	Prompt          string
	Model           string  // empty uses the client default
	Temperature     float64 // 0 uses DefaultTemperature
	MaxOutputTokens int     // <= 0 uses DefaultMaxOutputTokens
}

// Client talks to the Gemini REST API.
type Client struct {
	apiKey       string
	baseURL      string
	defaultModel string
	httpClient   *http.Client
	logger       *slog.Logger

	discoveryTimeout time.Duration

	// discovery collapses concurrent ListModels fallbacks into one request
	discovery singleflight.Group
}

// NewClient creates a Gemini client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		defaultModel: normalizeModelName(cfg.Model),
		httpClient:   httpClient,
		logger:       logger,

		discoveryTimeout: cfg.Timeout,
	}
}

// Configured reports whether an API key is present
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// fallbackState is a step of the model fallback state machine.
type fallbackState int

const (
	stateAttempt fallbackState = iota
	stateDiscover
	stateRetry
)

// GenerateText runs the prompt and returns the trimmed response text.
//
// The call follows Attempt -> Discover -> Retry. Only a model error on the first
// attempt leads to discovery, and at most one retry is made. Any other failure
// (auth, quota, network) is returned as is.
func (c *Client) GenerateText(ctx context.Context, req GenerateRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	model := c.defaultModel
	if req.Model != "" {
		model = normalizeModelName(req.Model)
	}

	var attemptErr error
	state := stateAttempt
	for {
		switch state {
		case stateAttempt:
			text, err := c.generate(ctx, model, req)
			if err == nil {
				return text, nil
			}
			if !IsModelError(err) {
				return "", err
			}
			attemptErr = err
			state = stateDiscover

		case stateDiscover:
			picked, err := c.discoverModel(ctx)
			if err != nil {
				c.logger.Error("model discovery failed",
					"requested_model", model,
					"attempt_error", attemptErr,
					"error", err,
				)
				return "", err
			}
			c.logger.Warn("falling back to discovered model",
				"requested_model", model,
				"model", picked,
				"attempt_error", attemptErr,
			)
			model = picked
			state = stateRetry

		case stateRetry:
			return c.generate(ctx, model, req)
		}
	}
}

// discoverModel lists models and picks a replacement. The shared ListModels call
// is detached from the caller that started it, so one caller going away does not
// fail the others waiting on the same discovery.
func (c *Client) discoverModel(ctx context.Context) (string, error) {
	ch := c.discovery.DoChan("models", func() (interface{}, error) {
		listCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.discoveryTimeout)
		defer cancel()
		return c.ListModels(listCtx)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return "", res.Err
	}
	if res.Shared {
		c.logger.Debug("shared model discovery result")
	}
	picked, ok := PickModel(res.Val.([]Model))
	if !ok {
		return "", ErrNoGenerateContentModel
	}
	return picked, nil
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiBody `json:"error"`
}

// generate performs one generateContent exchange
func (c *Client) generate(ctx context.Context, model string, req GenerateRequest) (string, error) {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxOutputTokens
	}

	payload := generateContentRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: req.Prompt}},
		}},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed generateContentResponse
	decodeErr := json.Unmarshal(body, &parsed)

	c.logger.Debug("gemini generateContent",
		"model", model,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		message := ""
		if decodeErr == nil && parsed.Error != nil {
			message = parsed.Error.Message
		}
		return "", newAPIError(resp.StatusCode, http.StatusText(resp.StatusCode), message, "Gemini API error")
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to parse generate response: %w", decodeErr)
	}

	return extractText(&parsed), nil
}

// extractText joins the first candidate's text parts
func extractText(resp *generateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String())
}
