package models

import "github.com/golang-jwt/jwt/v5"

// Claims represents the JWT claims issued by the identity provider (Supabase-compatible).
type Claims struct {
	jwt.RegisteredClaims                        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string                 `json:"email"`
	UserMetadata         map[string]interface{} `json:"user_metadata"`
	Role                 string                 `json:"role"` // "authenticated" or "anon"
	SessionID            string                 `json:"session_id"`
	IsAnonymous          bool                   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}

// DisplayName returns the best available human name from user metadata.
func (c *Claims) DisplayName() string {
	for _, key := range []string{"full_name", "name"} {
		if v, ok := c.UserMetadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Identity is the authenticated caller as seen by handlers.
type Identity struct {
	UserID string
	Email  string
	Name   string
}
