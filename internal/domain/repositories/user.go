package repositories

import (
	"context"

	"thecrew/internal/domain/models"
)

// UserRepository defines data access operations for user accounts
type UserRepository interface {
	// Create inserts a user; a duplicate email returns a ConflictError
	Create(ctx context.Context, user *models.User) error

	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail looks up by normalized (lower-cased) email
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
