package repositories

import (
	"context"

	"thecrew/internal/domain/models"
)

// WorkspaceRepository defines data access operations for workspaces
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *models.Workspace) error
	GetByID(ctx context.Context, id string) (*models.Workspace, error)

	// ListForUser returns the workspaces the user is a member of, with Role set
	ListForUser(ctx context.Context, userID string) ([]models.Workspace, error)

	Update(ctx context.Context, workspace *models.Workspace) error

	// Delete removes the workspace row; a missing row is not an error
	Delete(ctx context.Context, id string) error
}

// MemberRepository defines data access operations for workspace memberships
type MemberRepository interface {
	// Add inserts a membership; an existing (workspace, user) pair returns a ConflictError
	Add(ctx context.Context, member *models.WorkspaceMember) error

	// Get resolves (workspace, user) to a membership, ErrNotFound when absent
	Get(ctx context.Context, workspaceID, userID string) (*models.WorkspaceMember, error)

	GetByID(ctx context.Context, workspaceID, memberID string) (*models.WorkspaceMember, error)
	List(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error)
	UpdateRole(ctx context.Context, workspaceID, memberID string, role models.Role) error
	Remove(ctx context.Context, workspaceID, memberID string) error

	// CountByRole counts memberships holding the role
	CountByRole(ctx context.Context, workspaceID string, role models.Role) (int, error)

	// DeleteByWorkspace removes every membership of the workspace
	DeleteByWorkspace(ctx context.Context, workspaceID string) error
}
