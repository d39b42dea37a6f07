package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the payload of a session token issued by this service.
type SessionClaims struct {
	// sub = user id, jti = revocation key
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *SessionClaims) GetUserID() string {
	return c.Subject
}

// ExternalClaims is the payload of a bearer token minted by an external identity provider.
type ExternalClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}
