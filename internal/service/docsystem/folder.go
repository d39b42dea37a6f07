package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"thecrew/internal/config"
	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
	"thecrew/internal/domain/services"
)

type folderService struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	txManager  repositories.TransactionManager
	validator  *ResourceValidator
	authorizer services.WorkspaceAuthorizer
	storage    services.ObjectStorage
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	txManager repositories.TransactionManager,
	validator *ResourceValidator,
	authorizer services.WorkspaceAuthorizer,
	storage services.ObjectStorage,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		txManager:  txManager,
		validator:  validator,
		authorizer: authorizer,
		storage:    storage,
		logger:     logger,
	}
}

func validateFolderName(name string) error {
	return validation.Validate(name,
		validation.Required.Error("folder name is required"),
		validation.Length(1, config.MaxFolderNameLength),
		noSlash,
	)
}

// CreateFolder creates a folder at the workspace root or under a parent in the same workspace
func (s *folderService) CreateFolder(ctx context.Context, userID string, req *services.CreateFolderRequest) (*models.Folder, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, req.WorkspaceID, models.ActionCreateFolder); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validateFolderName(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}
	if req.ParentID != nil {
		if _, err := s.validator.ValidateParent(ctx, *req.ParentID, req.WorkspaceID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	folder := &models.Folder{
		WorkspaceID: req.WorkspaceID,
		ParentID:    req.ParentID,
		Name:        req.Name,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"workspace_id", folder.WorkspaceID,
		"parent_id", folder.ParentID,
	)
	return folder, nil
}

func (s *folderService) ListFolders(ctx context.Context, userID, workspaceID string) ([]models.Folder, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionRead); err != nil {
		return nil, err
	}
	return s.folderRepo.ListByWorkspace(ctx, workspaceID)
}

// GetFolder returns the folder with its breadcrumb, root first
func (s *folderService) GetFolder(ctx context.Context, userID, workspaceID, folderID string) (*models.FolderWithPath, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionRead); err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID, workspaceID)
	if err != nil {
		return nil, err
	}

	all, err := s.folderRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	crumbs, err := Breadcrumb(all, folder.ID)
	if err != nil {
		return nil, err
	}

	return &models.FolderWithPath{Folder: *folder, Breadcrumb: crumbs}, nil
}

func (s *folderService) RenameFolder(ctx context.Context, userID, workspaceID, folderID string, req *services.RenameFolderRequest) (*models.Folder, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionUpdateFolder); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validateFolderName(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID, workspaceID)
	if err != nil {
		return nil, err
	}
	folder.Name = req.Name
	folder.UpdatedAt = time.Now()

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", folder.ID, "name", folder.Name, "workspace_id", workspaceID)
	return folder, nil
}

// DeleteFolder deletes the folder and everything below it in one transaction,
// then removes the stored objects. A folder that is already gone is a success.
func (s *folderService) DeleteFolder(ctx context.Context, userID, workspaceID, folderID string) error {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionDeleteFolder); err != nil {
		return err
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID, workspaceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	var objectPaths []string
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		paths, err := s.deleteDescendants(txCtx, folderID, workspaceID)
		if err != nil {
			return err
		}
		objectPaths = paths
		return s.folderRepo.Delete(txCtx, folderID, workspaceID)
	})
	if err != nil {
		return err
	}

	removeObjects(ctx, s.storage, s.logger, objectPaths)

	s.logger.Info("folder deleted",
		"id", folderID,
		"name", folder.Name,
		"workspace_id", workspaceID,
		"files_deleted", len(objectPaths),
	)
	return nil
}

// deleteDescendants recursively deletes child folders and the files of every
// visited folder, returning the object keys of the deleted files.
func (s *folderService) deleteDescendants(ctx context.Context, folderID, workspaceID string) ([]string, error) {
	children, err := s.folderRepo.ListChildren(ctx, &folderID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child folders: %w", err)
	}

	var paths []string
	for _, child := range children {
		childPaths, err := s.deleteDescendants(ctx, child.ID, workspaceID)
		if err != nil {
			return nil, err
		}
		paths = append(paths, childPaths...)

		if err := s.folderRepo.Delete(ctx, child.ID, workspaceID); err != nil {
			return nil, fmt.Errorf("failed to delete child folder %q: %w", child.Name, err)
		}
		s.logger.Debug("deleted child folder", "id", child.ID, "name", child.Name)
	}

	filePaths, err := s.fileRepo.DeleteByFolder(ctx, folderID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete files: %w", err)
	}
	return append(paths, filePaths...), nil
}

// removeObjects deletes stored objects after their metadata is gone.
// Failures are logged; an orphaned object is preferable to a failed request.
func removeObjects(ctx context.Context, storage services.ObjectStorage, logger *slog.Logger, paths []string) {
	for _, p := range paths {
		if err := storage.Delete(ctx, p); err != nil {
			logger.Warn("failed to delete stored object", "object_path", p, "error", err)
		}
	}
}
