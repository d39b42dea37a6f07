package repositories

import (
	"context"

	"thecrew/internal/domain/models"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder scoped to its workspace
	GetByID(ctx context.Context, id, workspaceID string) (*models.Folder, error)

	Update(ctx context.Context, folder *models.Folder) error

	// Delete removes a single folder row; a missing row is not an error
	Delete(ctx context.Context, id, workspaceID string) error

	// ListChildren lists immediate child folders (folderID nil = root)
	ListChildren(ctx context.Context, folderID *string, workspaceID string) ([]models.Folder, error)

	// ListByWorkspace retrieves all folders in a workspace (flat list)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error)

	DeleteByWorkspace(ctx context.Context, workspaceID string) error
}
