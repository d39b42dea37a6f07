package services

import (
	"context"

	"thecrew/internal/domain/models"
)

// WorkspaceAuthorizer is the gate every workspace-scoped operation passes first.
//
// It resolves (user, workspace) to a membership and applies the role policy:
// no membership yields an access_denied ForbiddenError, a role that may not
// perform the action yields a permission_denied ForbiddenError naming it.
type WorkspaceAuthorizer interface {
	Authorize(ctx context.Context, userID, workspaceID string, action models.Action) (*models.WorkspaceMember, error)
}
