package auth

import (
	"context"
	"errors"
	"fmt"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
)

// RoleAuthorizer implements WorkspaceAuthorizer using workspace membership roles.
// A user can act in a workspace only through a membership row, and the role on that
// row decides which actions are allowed (see models.Role.Can).
type RoleAuthorizer struct {
	memberRepo repositories.MemberRepository
}

// NewRoleAuthorizer creates a new role-based authorizer
func NewRoleAuthorizer(memberRepo repositories.MemberRepository) *RoleAuthorizer {
	return &RoleAuthorizer{memberRepo: memberRepo}
}

// Authorize returns the caller's membership when the role allows the action.
// A missing workspace and a missing membership produce the same error so that
// workspace ids cannot be probed.
func (a *RoleAuthorizer) Authorize(ctx context.Context, userID, workspaceID string, action models.Action) (*models.WorkspaceMember, error) {
	member, err := a.memberRepo.Get(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAccessDenied()
		}
		return nil, fmt.Errorf("check workspace access: %w", err)
	}

	if !member.Role.Valid() {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("unknown role %q", member.Role)}
	}
	if !member.Role.Can(action) {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("%s role cannot %s", member.Role, action)}
	}
	return member, nil
}
