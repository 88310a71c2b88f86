package auth

import "blockwriter/internal/domain/models"

// JWTVerifier defines the interface for JWT token verification.
// The HTTP middleware depends on this abstraction only.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier
	Close() error
}
