package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"

	"thecrew/internal/config"
	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
	"thecrew/internal/domain/services"
)

type accountService struct {
	userRepo  repositories.UserRepository
	cost      int
	dummyHash []byte
	logger    *slog.Logger
}

// NewAccountService creates a new account service. cost is the bcrypt cost;
// zero selects bcrypt.DefaultCost.
func NewAccountService(userRepo repositories.UserRepository, cost int, logger *slog.Logger) (services.AccountService, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	// Compared against on unknown emails so both login failures cost the same
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}

	return &accountService{
		userRepo:  userRepo,
		cost:      cost,
		dummyHash: dummy,
		logger:    logger,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account
func (s *accountService) Register(ctx context.Context, req *services.RegisterRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat, validation.Length(1, 320)),
		validation.Field(&req.Password, validation.Required, validation.Length(config.MinPasswordLength, 72)),
		validation.Field(&req.Name, validation.Length(0, 100)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	name := req.Name
	if name == "" {
		name = strings.SplitN(req.Email, "@", 2)[0]
	}

	now := time.Now()
	user := &models.User{
		Email:        req.Email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials
func (s *accountService) Login(ctx context.Context, req *services.LoginRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials()
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			return nil, domain.ErrInvalidCredentials()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials()
	}
	return user, nil
}

func (s *accountService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
