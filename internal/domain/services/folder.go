package services

import (
	"context"

	"thecrew/internal/domain/models"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a folder; a parent outside the workspace is an invalid_parent error
	CreateFolder(ctx context.Context, userID string, req *CreateFolderRequest) (*models.Folder, error)

	// ListFolders returns the flat folder list of the workspace
	ListFolders(ctx context.Context, userID, workspaceID string) ([]models.Folder, error)

	// GetFolder retrieves a folder with its breadcrumb
	GetFolder(ctx context.Context, userID, workspaceID, folderID string) (*models.FolderWithPath, error)

	RenameFolder(ctx context.Context, userID, workspaceID, folderID string, req *RenameFolderRequest) (*models.Folder, error)

	// DeleteFolder removes the folder, its descendants and their files. Deleting a missing folder succeeds.
	DeleteFolder(ctx context.Context, userID, workspaceID, folderID string) error
}

// TreeService assembles the nested folder/file tree server-side
type TreeService interface {
	GetWorkspaceTree(ctx context.Context, userID, workspaceID string) (*models.TreeNode, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	WorkspaceID string  `json:"-"`
	Name        string  `json:"name"`
	ParentID    *string `json:"parentId,omitempty"`
}

type RenameFolderRequest struct {
	Name string `json:"name"`
}
