package auth

import (
	"context"
	"time"

	"thecrew/internal/domain/models"
)

// JWTVerifier verifies bearer tokens minted by an external identity provider.
// This abstraction keeps the middleware agnostic to how keys are fetched.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.ExternalClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}

// Revocations remembers logged-out session ids until their tokens would have expired anyway.
type Revocations interface {
	Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
