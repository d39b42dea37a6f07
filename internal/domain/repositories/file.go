package repositories

import (
	"context"

	"thecrew/internal/domain/models"
)

// FileRepository defines data access operations for file metadata
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id, workspaceID string) (*models.File, error)
	ListByFolder(ctx context.Context, folderID, workspaceID string) ([]models.File, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.File, error)

	// Delete removes a file row and reports whether one existed
	Delete(ctx context.Context, id, workspaceID string) (bool, error)

	// DeleteByFolder removes the folder's files and returns their object paths
	DeleteByFolder(ctx context.Context, folderID, workspaceID string) ([]string, error)

	// DeleteByWorkspace removes all files in a workspace and returns their object paths
	DeleteByWorkspace(ctx context.Context, workspaceID string) ([]string, error)
}
