package services

import (
	"context"

	"thecrew/internal/domain/models"
)

// WorkspaceService handles workspace lifecycle
type WorkspaceService interface {
	// CreateWorkspace creates a workspace and makes the caller its first admin
	CreateWorkspace(ctx context.Context, userID string, req *CreateWorkspaceRequest) (*models.Workspace, error)

	ListWorkspaces(ctx context.Context, userID string) ([]models.Workspace, error)
	GetWorkspace(ctx context.Context, userID, workspaceID string) (*models.Workspace, error)
	UpdateWorkspace(ctx context.Context, userID, workspaceID string, req *UpdateWorkspaceRequest) (*models.Workspace, error)

	// DeleteWorkspace removes the workspace and everything it owns
	DeleteWorkspace(ctx context.Context, userID, workspaceID string) error
}

// MemberService handles role-gated membership management
type MemberService interface {
	ListMembers(ctx context.Context, userID, workspaceID string) ([]models.WorkspaceMember, error)
	AddMember(ctx context.Context, userID, workspaceID string, req *AddMemberRequest) (*models.WorkspaceMember, error)
	UpdateMemberRole(ctx context.Context, userID, workspaceID, memberID string, req *UpdateMemberRequest) (*models.WorkspaceMember, error)
	RemoveMember(ctx context.Context, userID, workspaceID, memberID string) error
}

type CreateWorkspaceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// UpdateWorkspaceRequest uses tri-state description so null clears it (no json tags - mapped from handler DTO)
type UpdateWorkspaceRequest struct {
	Name        *string
	Description Optional[string]
}

type AddMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UpdateMemberRequest struct {
	Role string `json:"role"`
}
