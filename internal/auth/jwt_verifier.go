package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
)

// allowedAlgorithms prevents algorithm confusion attacks
var allowedAlgorithms = []string{"RS256", "ES256"}

// JWKSVerifier implements JWTVerifier using public keys from a JWKS endpoint.
type JWKSVerifier struct {
	keyfunc jwt.Keyfunc
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// NewJWTVerifier creates a verifier that fetches public keys from jwksURL.
// keyfunc v3 caches the keys and refreshes them in the background until Close.
func NewJWTVerifier(jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{
		keyfunc: jwks.Keyfunc,
		cancel:  cancel,
		logger:  logger,
	}, nil
}

// NewKeyfuncVerifier creates a verifier around an existing key lookup, e.g. a fixed public key
func NewKeyfuncVerifier(kf jwt.Keyfunc, logger *slog.Logger) JWTVerifier {
	return &JWKSVerifier{keyfunc: kf, logger: logger}
}

// VerifyToken validates a JWT token and extracts the claims.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, v.keyfunc,
		jwt.WithValidMethods(allowedAlgorithms),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err.Error())
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		v.logger.Debug("token is invalid after parsing")
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	// Reject anonymous sessions
	if claims.Role != "authenticated" {
		v.logger.Warn("token has invalid role",
			"role", claims.Role,
			"expected", "authenticated",
			"user_id", claims.Subject,
		)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close stops the background JWKS refresh
func (v *JWKSVerifier) Close() error {
	if v.cancel != nil {
		v.cancel()
	}
	v.logger.Info("JWT verifier closed")
	return nil
}
