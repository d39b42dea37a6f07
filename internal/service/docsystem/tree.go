package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
	"thecrew/internal/domain/services"
)

type treeService struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	authorizer services.WorkspaceAuthorizer
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	authorizer services.WorkspaceAuthorizer,
	logger *slog.Logger,
) services.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		authorizer: authorizer,
		logger:     logger,
	}
}

// GetWorkspaceTree builds the nested folder/file tree for a workspace
func (s *treeService) GetWorkspaceTree(ctx context.Context, userID, workspaceID string) (*models.TreeNode, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionRead); err != nil {
		return nil, err
	}

	folders, err := s.folderRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	tree := BuildTree(folders, files)

	s.logger.Debug("workspace tree built",
		"workspace_id", workspaceID,
		"folder_count", len(folders),
		"file_count", len(files),
	)
	return tree, nil
}

// BuildTree nests folders and files in three passes, O(folders + files).
// Folders whose parent is missing are dropped along with their subtree.
func BuildTree(folders []models.Folder, files []models.File) *models.TreeNode {
	folderMap := make(map[string]*models.FolderTreeNode, len(folders))
	var rootIDs []string

	// First pass: create all folder nodes
	for _, folder := range folders {
		folderMap[folder.ID] = &models.FolderTreeNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			CreatedAt: folder.CreatedAt,
			Folders:   []*models.FolderTreeNode{},
			Files:     []models.FileTreeNode{},
		}
	}

	// Second pass: connect children to parents
	for _, folder := range folders {
		node := folderMap[folder.ID]
		if folder.ParentID == nil {
			rootIDs = append(rootIDs, folder.ID)
		} else if parent, ok := folderMap[*folder.ParentID]; ok {
			parent.Folders = append(parent.Folders, node)
		}
	}

	// Third pass: attach files
	for _, file := range files {
		if parent, ok := folderMap[file.FolderID]; ok {
			parent.Files = append(parent.Files, models.FileTreeNode{
				ID:        file.ID,
				Name:      file.Name,
				Type:      file.Type,
				Size:      file.Size,
				CreatedAt: file.CreatedAt,
			})
		}
	}

	roots := make([]*models.FolderTreeNode, 0, len(rootIDs))
	for _, id := range rootIDs {
		roots = append(roots, folderMap[id])
	}
	return &models.TreeNode{Folders: roots}
}

// Breadcrumb walks parent links from leafID up to the root and returns the path root first.
// A dangling parent or a cycle is reported instead of looping.
func Breadcrumb(folders []models.Folder, leafID string) ([]models.Folder, error) {
	byID := make(map[string]models.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}

	var path []models.Folder
	seen := make(map[string]bool)
	id := leafID
	for {
		f, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("breadcrumb: folder %s is missing from the workspace", id)
		}
		if seen[id] {
			return nil, fmt.Errorf("breadcrumb: cycle at folder %s", id)
		}
		seen[id] = true
		path = append(path, f)
		if f.ParentID == nil {
			break
		}
		id = *f.ParentID
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
