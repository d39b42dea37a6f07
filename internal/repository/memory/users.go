package memory

import (
	"context"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return &domain.ConflictError{Message: "user with this email already exists", ResourceType: "user"}
		}
	}

	user.ID = r.s.newIDLocked()
	stamp(&user.CreatedAt)
	stamp(&user.UpdatedAt)
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NewNotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.NewNotFound("user", email)
}
