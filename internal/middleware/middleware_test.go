package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/httputil"
)

type stubVerifier struct {
	tokens map[string]*models.Claims
}

func (s *stubVerifier) VerifyToken(token string) (*models.Claims, error) {
	if c, ok := s.tokens[token]; ok {
		return c, nil
	}
	return nil, domain.ErrUnauthorized
}

func (s *stubVerifier) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthHandler() (http.Handler, *models.Identity) {
	verifier := &stubVerifier{tokens: map[string]*models.Claims{
		"good": {
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
			Email:            "taro@example.com",
			Role:             "authenticated",
			UserMetadata:     map[string]interface{}{"name": "Taro"},
		},
	}}
	seen := &models.Identity{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = httputil.GetIdentity(r)
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(verifier, discardLogger())(next), seen
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env httputil.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		auth       string
		wantStatus int
		wantUser   string
	}{
		{"valid token", http.MethodGet, "/api/documents", "Bearer good", http.StatusOK, "user-1"},
		{"missing token", http.MethodGet, "/api/documents", "", http.StatusUnauthorized, ""},
		{"wrong scheme", http.MethodGet, "/api/documents", "Basic good", http.StatusUnauthorized, ""},
		{"invalid token", http.MethodGet, "/api/documents", "Bearer bad", http.StatusUnauthorized, ""},
		{"health is public", http.MethodGet, "/health", "", http.StatusOK, ""},
		{"anonymous template list", http.MethodGet, "/api/templates", "", http.StatusOK, ""},
		{"template list with token", http.MethodGet, "/api/templates", "Bearer good", http.StatusOK, "user-1"},
		{"template list bad token", http.MethodGet, "/api/templates", "Bearer bad", http.StatusUnauthorized, ""},
		{"template create needs token", http.MethodPost, "/api/templates", "", http.StatusUnauthorized, ""},
		{"preflight passes", http.MethodOptions, "/api/documents", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, seen := newAuthHandler()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, domain.CodeUnauthorized, errorCode(t, rec))
				return
			}
			assert.Equal(t, tt.wantUser, seen.UserID)
		})
	}
}

func TestAuthMiddleware_Identity(t *testing.T) {
	h, seen := newAuthHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/users/me/profile", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, models.Identity{UserID: "user-1", Email: "taro@example.com", Name: "Taro"}, *seen)
}

func TestRecovery(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, domain.CodeInternal, errorCode(t, rec))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/documents/x", nil)
	h.ServeHTTP(rec, httputil.WithUserID(req, "user-1"))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, float64(404), entry["status"])
	assert.Equal(t, "user-1", entry["user_id"])
}

func TestRequestLogger_KeepsIncomingID(t *testing.T) {
	h := RequestLogger(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}
