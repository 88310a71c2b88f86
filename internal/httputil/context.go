package httputil

import (
	"context"
	"net/http"

	"blockwriter/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey   contextKey = "userID"
	identityKey contextKey = "identity"
)

// WithUserID adds userID to the request context
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// WithIdentity stores the authenticated caller and its user id
func WithIdentity(r *http.Request, identity models.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityKey, identity)
	ctx = context.WithValue(ctx, userIDKey, identity.UserID)
	return r.WithContext(ctx)
}

// GetIdentity returns the caller, falling back to the bare user id
func GetIdentity(r *http.Request) models.Identity {
	if identity, ok := r.Context().Value(identityKey).(models.Identity); ok {
		return identity
	}
	return models.Identity{UserID: GetUserID(r)}
}
