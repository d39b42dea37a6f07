package services

import (
	"context"

	"thecrew/internal/domain/models"
)

// AccountService handles registration and credential checks
type AccountService interface {
	// Register creates an account; a taken email returns a ConflictError
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)

	// Login verifies credentials. Unknown email and wrong password return the same error.
	Login(ctx context.Context, req *LoginRequest) (*models.User, error)

	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// RegisterRequest represents an account registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
