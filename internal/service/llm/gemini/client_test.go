package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelNotFound = "models/gemini-1.5-flash is not found for API version v1beta, or is not supported for generateContent. Call ListModels to see the list of available models."

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func textResponse(parts ...string) map[string]interface{} {
	ps := make([]map[string]string, len(parts))
	for i, p := range parts {
		ps[i] = map[string]string{"text": p}
	}
	return map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{"content": map[string]interface{}{"parts": ps}},
		},
	}
}

func errorResponse(status int, message string) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{"code": status, "message": message},
	}
}

func modelList(models ...Model) map[string]interface{} {
	out := make([]map[string]interface{}, len(models))
	for i, m := range models {
		out[i] = map[string]interface{}{
			"name":                       "models/" + m.Name,
			"supportedGenerationMethods": m.SupportedGenerationMethods,
		}
	}
	return map[string]interface{}{"models": out}
}

func generating(name string) Model {
	return Model{Name: name, SupportedGenerationMethods: []string{"generateContent", "countTokens"}}
}

func TestGenerateText_Success(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))

		var req generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Equal(t, "hello", req.Contents[0].Parts[0].Text)
		assert.Equal(t, 0.7, req.GenerationConfig.Temperature)
		assert.Equal(t, 2048, req.GenerationConfig.MaxOutputTokens)

		writeJSON(w, http.StatusOK, textResponse("  こんにちは", "世界\n"))
	}))

	text, err := client.GenerateText(context.Background(), GenerateRequest{Prompt: "hello"})

	require.NoError(t, err)
	assert.Equal(t, "こんにちは世界", text)
}

func TestGenerateText_ExplicitModelAndParams(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		var req generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 0.2, req.GenerationConfig.Temperature)
		assert.Equal(t, 100, req.GenerationConfig.MaxOutputTokens)
		writeJSON(w, http.StatusOK, textResponse("ok"))
	}))

	text, err := client.GenerateText(context.Background(), GenerateRequest{
		Prompt:          "p",
		Model:           "models/gemini-2.0-flash",
		Temperature:     0.2,
		MaxOutputTokens: 100,
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestGenerateText_NoCandidates(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{})
	}))

	text, err := client.GenerateText(context.Background(), GenerateRequest{Prompt: "p"})

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGenerateText_FallbackToPreferredModel(t *testing.T) {
	var generateCalls, listCalls int32
	var models []string

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1beta/models":
			atomic.AddInt32(&listCalls, 1)
			assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
			writeJSON(w, http.StatusOK, modelList(
				Model{Name: "embedding-001", SupportedGenerationMethods: []string{"embedContent"}},
				generating("gemini-1.5-pro"),
				generating("gemini-2.0-flash"),
			))
		case strings.HasSuffix(r.URL.Path, ":generateContent"):
			atomic.AddInt32(&generateCalls, 1)
			models = append(models, strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1beta/models/"), ":generateContent"))
			if strings.Contains(r.URL.Path, "gemini-1.5-flash") {
				writeJSON(w, http.StatusNotFound, errorResponse(404, modelNotFound))
				return
			}
			writeJSON(w, http.StatusOK, textResponse("fallback ok"))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	text, err := client.GenerateText(context.Background(), GenerateRequest{Prompt: "p"})

	require.NoError(t, err)
	assert.Equal(t, "fallback ok", text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&generateCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&listCalls))
	assert.Equal(t, []string{"gemini-1.5-flash", "gemini-2.0-flash"}, models)
}

func TestGenerateText_FallbackToFirstSupported(t *testing.T) {
	var retried string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, modelList(
				Model{Name: "aqa", SupportedGenerationMethods: []string{"generateAnswer"}},
				generating("gemini-exp-1206"),
				generating("gemini-exp-0827"),
			))
			return
		}
		if strings.Contains(r.URL.Path, "gemini-1.5-flash") {
			writeJSON(w, http.StatusBadRequest, errorResponse(400, "model is not supported for generateContent"))
			return
		}
		retried = r.URL.Path
		writeJSON(w, http.StatusOK, textResponse("ok"))
	}))

	_, err := client.GenerateText(context.Background(), GenerateRequest{Prompt: "p"})

	require.NoError(t, err)
	assert.Equal(t, "/v1beta/models/gemini-exp-1206:generateContent", retried)
}

func TestGenerateText_NoSupportedModel(t *testing.T) {
	var generateCalls int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, modelList(Model{Name: "embedding-001", SupportedGenerationMethods: []string{"embedContent"}}))
			return
		}
		atomic.AddInt32(&generateCalls, 1)
		writeJSON(w, http.StatusNotFound, errorResponse(404, modelNotFound))
	}))

	_, err := client.GenerateText(context.Background(), GenerateRequest{Prompt: "p"})

	assert.ErrorIs(t, err, ErrNoGenerateContentModel)
	assert.Equal(t, int32(1), atomic.LoadInt32(&generateCalls))
}

func TestGenerateText_RetryFailsOnlyOnce(t *testing.T) {
	var generateCalls, listCalls int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			atomic.AddInt32(&listCalls, 1)
			writeJSON(w, http.StatusOK, modelList(generating("gemini-2.0-flash")))
			return
		}
		atomic.AddInt32(&generateCalls, 1)
		// the retried model is also reported missing; no second discovery may happen
		writeJSON(w, http.StatusNotFound, errorResponse(404, "models/gemini-2.0-flash is not found"))
	}))

	_, err := client.GenerateText(context.Background(), GenerateRequest{Prompt: "p"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "models/gemini-2.0-flash is not found", apiErr.Message)
	assert.Equal(t, int32(2), atomic.LoadInt32(&generateCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&listCalls))
}

func TestGenerateText_NonModelErrorsPropagate(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    interface{}
		message string
	}{
		{"auth", http.StatusUnauthorized, errorResponse(401, "API key not valid. Please pass a valid API key."), "API key not valid. Please pass a valid API key."},
		{"rate limit", http.StatusTooManyRequests, errorResponse(429, "Resource has been exhausted"), "Resource has been exhausted"},
		{"no body", http.StatusInternalServerError, nil, "Gemini API error: 500 Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var listCalls int32
			client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodGet {
					atomic.AddInt32(&listCalls, 1)
				}
				if tt.body == nil {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, tt.body)
			}))

			_, err := client.GenerateText(context.Background(), GenerateRequest{Prompt: "p"})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.False(t, IsModelError(err))
			assert.Zero(t, atomic.LoadInt32(&listCalls))
		})
	}
}

func TestGenerateText_ListModelsFailure(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusForbidden, errorResponse(403, "permission denied"))
			return
		}
		writeJSON(w, http.StatusNotFound, errorResponse(404, modelNotFound))
	}))

	_, err := client.GenerateText(context.Background(), GenerateRequest{Prompt: "p"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "permission denied", apiErr.Message)
}

func TestGenerateText_MissingKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil)

	_, err := client.GenerateText(context.Background(), GenerateRequest{Prompt: "p"})

	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, client.Configured())
}

func TestGenerateText_ContextCanceled(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GenerateText(ctx, GenerateRequest{Prompt: "p"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateText_SharedDiscoverySurvivesCanceledCaller(t *testing.T) {
	var listCalls int32
	missing := make(chan struct{}, 2)
	listing := make(chan struct{})
	release := make(chan struct{})
	var listingOnce sync.Once

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1beta/models":
			atomic.AddInt32(&listCalls, 1)
			listingOnce.Do(func() { close(listing) })
			<-release
			writeJSON(w, http.StatusOK, modelList(generating("gemini-2.0-flash")))
		case strings.Contains(r.URL.Path, "gemini-1.5-flash"):
			writeJSON(w, http.StatusNotFound, errorResponse(404, modelNotFound))
			missing <- struct{}{}
		default:
			writeJSON(w, http.StatusOK, textResponse("ok"))
		}
	}))

	type result struct {
		text string
		err  error
	}
	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	resA := make(chan result, 1)
	resB := make(chan result, 1)
	go func() {
		text, err := client.GenerateText(ctxA, GenerateRequest{Prompt: "a"})
		resA <- result{text, err}
	}()
	go func() {
		text, err := client.GenerateText(context.Background(), GenerateRequest{Prompt: "b"})
		resB <- result{text, err}
	}()

	<-missing
	<-missing
	<-listing
	cancelA()

	a := <-resA
	assert.ErrorIs(t, a.err, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "ok", b.text)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&listCalls), int32(1))
}

func TestListModels_Paginates(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageToken") == "" {
			resp := modelList(generating("gemini-1.5-flash"))
			resp["nextPageToken"] = "next"
			writeJSON(w, http.StatusOK, resp)
			return
		}
		writeJSON(w, http.StatusOK, modelList(generating("gemini-2.0-flash")))
	}))

	models, err := client.ListModels(context.Background())

	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "gemini-1.5-flash", models[0].Name)
	assert.Equal(t, "gemini-2.0-flash", models[1].Name)
}

func TestPickModel(t *testing.T) {
	tests := []struct {
		name   string
		models []Model
		want   string
		ok     bool
	}{
		{"empty", nil, "", false},
		{"none support generateContent", []Model{{Name: "embedding-001", SupportedGenerationMethods: []string{"embedContent"}}}, "", false},
		{"preference order wins over listing order", []Model{generating("gemini-1.5-pro"), generating("gemini-2.0-flash-lite")}, "gemini-2.0-flash-lite", true},
		{"preferred but unsupported is skipped", []Model{{Name: "gemini-2.0-flash"}, generating("gemini-1.5-flash")}, "gemini-1.5-flash", true},
		{"first supported otherwise", []Model{generating("gemini-exp"), generating("gemini-other")}, "gemini-exp", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickModel(tt.models)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsModelError(t *testing.T) {
	assert.True(t, IsModelError(&APIError{StatusCode: 404, Message: modelNotFound}))
	assert.True(t, IsModelError(fmt.Errorf("wrapped: %w", &APIError{Message: "Call ListModels to see"})))
	assert.False(t, IsModelError(&APIError{StatusCode: 429, Message: "quota"}))
	assert.False(t, IsModelError(fmt.Errorf("not found")))
}
