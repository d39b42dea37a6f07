package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
)

// JWKSVerifier implements JWTVerifier against a remote JWKS endpoint.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWTVerifier creates a verifier that fetches public keys from the IdP's JWKS endpoint.
// The keys are cached and refreshed based on HTTP cache headers.
func NewJWTVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return newJWKSVerifier(jwks, logger), nil
}

func newJWKSVerifier(jwks keyfunc.Keyfunc, logger *slog.Logger) *JWKSVerifier {
	return &JWKSVerifier{jwks: jwks, logger: logger}
}

func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.ExternalClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.ExternalClaims{}, v.jwks.Keyfunc,
		// Prevent algorithm confusion attacks
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
	)
	if err != nil || !token.Valid {
		v.logger.Debug("external token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.ExternalClaims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	// Identity is resolved by email, so tokens without one are useless
	if claims.Subject == "" || claims.Email == "" {
		v.logger.Debug("token missing subject or email claim")
		return nil, domain.ErrUnauthorized
	}

	// Reject anonymous tokens
	if claims.Role != "" && claims.Role != "authenticated" {
		v.logger.Warn("token has invalid role", "role", claims.Role, "subject", claims.Subject)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close is a no-op; keyfunc v3 manages its own refresh goroutine lifetime via ctx.
func (v *JWKSVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
