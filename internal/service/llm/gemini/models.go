package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// PreferredModels is the fallback preference order, newest and fastest first.
var PreferredModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

const methodGenerateContent = "generateContent"

// maxModelPages bounds ListModels pagination.
const maxModelPages = 10

// Model is one entry of the ListModels response with the "models/" prefix removed.
type Model struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// SupportsGenerateContent reports whether the model can serve generateContent
func (m Model) SupportsGenerateContent() bool {
	for _, method := range m.SupportedGenerationMethods {
		if method == methodGenerateContent {
			return true
		}
	}
	return false
}

type listModelsResponse struct {
	Models        []Model  `json:"models"`
	NextPageToken string   `json:"nextPageToken"`
	Error         *apiBody `json:"error"`
}

type apiBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ListModels returns every model visible to the API key.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var models []Model
	pageToken := ""
	for page := 0; page < maxModelPages; page++ {
		resp, err := c.listModelsPage(ctx, pageToken)
		if err != nil {
			return nil, err
		}
		for _, m := range resp.Models {
			m.Name = normalizeModelName(m.Name)
			if m.SupportedGenerationMethods == nil {
				m.SupportedGenerationMethods = []string{}
			}
			models = append(models, m)
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return models, nil
}

func (c *Client) listModelsPage(ctx context.Context, pageToken string) (*listModelsResponse, error) {
	endpoint := c.baseURL + "/v1beta/models"
	if pageToken != "" {
		endpoint += "?pageToken=" + url.QueryEscape(pageToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list models request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed listModelsResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusOK {
		message := ""
		if decodeErr == nil && parsed.Error != nil {
			message = parsed.Error.Message
		}
		return nil, newAPIError(resp.StatusCode, http.StatusText(resp.StatusCode), message, "Gemini ListModels error")
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to parse list models response: %w", decodeErr)
	}
	return &parsed, nil
}

// PickModel chooses the first preferred model that supports generateContent,
// falling back to the first supporting model in listing order.
func PickModel(models []Model) (string, bool) {
	var supported []Model
	for _, m := range models {
		if m.SupportsGenerateContent() {
			supported = append(supported, m)
		}
	}
	for _, preferred := range PreferredModels {
		for _, m := range supported {
			if m.Name == preferred {
				return m.Name, true
			}
		}
	}
	if len(supported) > 0 {
		return supported[0].Name, true
	}
	return "", false
}

func normalizeModelName(name string) string {
	return strings.TrimPrefix(name, "models/")
}
