package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"blockwriter/internal/auth"
	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/httputil"
)

// AuthMiddleware verifies the bearer token and stores the caller's identity in the request context.
// /health is public. GET /api/templates serves presets anonymously and user templates when a token is sent.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				if isOptionalAuth(r) {
					next.ServeHTTP(w, r)
					return
				}
				httputil.RespondError(w, http.StatusUnauthorized, domain.CodeUnauthorized, "認証が必要です")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, domain.CodeUnauthorized, "認証トークンが無効です")
				return
			}

			r = httputil.WithIdentity(r, models.Identity{
				UserID: claims.GetUserID(),
				Email:  claims.Email,
				Name:   claims.DisplayName(),
			})
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func isOptionalAuth(r *http.Request) bool {
	return r.Method == http.MethodGet && r.URL.Path == "/api/templates"
}
