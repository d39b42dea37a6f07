package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
	"thecrew/internal/domain/services"
)

type memberService struct {
	members    repositories.MemberRepository
	users      repositories.UserRepository
	txManager  repositories.TransactionManager
	authorizer services.WorkspaceAuthorizer
	logger     *slog.Logger
}

// NewMemberService creates a new member service
func NewMemberService(
	members repositories.MemberRepository,
	users repositories.UserRepository,
	txManager repositories.TransactionManager,
	authorizer services.WorkspaceAuthorizer,
	logger *slog.Logger,
) services.MemberService {
	return &memberService{
		members:    members,
		users:      users,
		txManager:  txManager,
		authorizer: authorizer,
		logger:     logger,
	}
}

var errLastAdmin = &domain.ConflictError{
	Message:      "a workspace must keep at least one admin",
	ResourceType: "member",
	Reason:       domain.KindLastAdmin,
}

func parseRole(raw string) (models.Role, error) {
	role, err := models.ParseRole(strings.TrimSpace(strings.ToLower(raw)))
	if err != nil {
		return "", fmt.Errorf("%w: role: %v", domain.ErrValidation, err)
	}
	return role, nil
}

func (s *memberService) ListMembers(ctx context.Context, userID, workspaceID string) ([]models.WorkspaceMember, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionRead); err != nil {
		return nil, err
	}
	return s.members.List(ctx, workspaceID)
}

// AddMember grants an existing account a role in the workspace
func (s *memberService) AddMember(ctx context.Context, userID, workspaceID string, req *services.AddMemberRequest) (*models.WorkspaceMember, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionManageMembers); err != nil {
		return nil, err
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Role, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	role, err := parseRole(req.Role)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("no account is registered for %s", req.Email)}
		}
		return nil, err
	}

	member := &models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      user.ID,
		Role:        role,
		AddedAt:     time.Now(),
	}
	if err := s.members.Add(ctx, member); err != nil {
		return nil, err
	}
	member.Email = user.Email
	member.Name = user.Name

	s.logger.Info("member added", "workspace_id", workspaceID, "user_id", user.ID, "role", role, "by", userID)
	return member, nil
}

// UpdateMemberRole changes a role. Demoting the only admin is a last_admin conflict.
func (s *memberService) UpdateMemberRole(ctx context.Context, userID, workspaceID, memberID string, req *services.UpdateMemberRequest) (*models.WorkspaceMember, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionManageMembers); err != nil {
		return nil, err
	}

	role, err := parseRole(req.Role)
	if err != nil {
		return nil, err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		target, err := s.members.GetByID(txCtx, workspaceID, memberID)
		if err != nil {
			return err
		}
		if target.Role == models.RoleAdmin && role != models.RoleAdmin {
			if err := s.ensureAnotherAdmin(txCtx, workspaceID); err != nil {
				return err
			}
		}
		return s.members.UpdateRole(txCtx, workspaceID, memberID, role)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("member role updated", "workspace_id", workspaceID, "member_id", memberID, "role", role, "by", userID)
	return s.members.GetByID(ctx, workspaceID, memberID)
}

// RemoveMember removes a membership, the caller's own included. It needs the
// admin role; the last admin cannot be removed.
func (s *memberService) RemoveMember(ctx context.Context, userID, workspaceID, memberID string) error {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionManageMembers); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		target, err := s.members.GetByID(txCtx, workspaceID, memberID)
		if err != nil {
			return err
		}
		if target.Role == models.RoleAdmin {
			if err := s.ensureAnotherAdmin(txCtx, workspaceID); err != nil {
				return err
			}
		}
		return s.members.Remove(txCtx, workspaceID, memberID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("member removed", "workspace_id", workspaceID, "member_id", memberID, "by", userID)
	return nil
}

// ensureAnotherAdmin must run inside the transaction; the count locks the admin rows
func (s *memberService) ensureAnotherAdmin(ctx context.Context, workspaceID string) error {
	admins, err := s.members.CountByRole(ctx, workspaceID, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins <= 1 {
		return errLastAdmin
	}
	return nil
}
