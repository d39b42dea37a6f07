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

type fileService struct {
	fileRepo   repositories.FileRepository
	validator  *ResourceValidator
	authorizer services.WorkspaceAuthorizer
	storage    services.ObjectStorage
	logger     *slog.Logger
}

// NewFileService creates a new file metadata service
func NewFileService(
	fileRepo repositories.FileRepository,
	validator *ResourceValidator,
	authorizer services.WorkspaceAuthorizer,
	storage services.ObjectStorage,
	logger *slog.Logger,
) services.FileService {
	return &fileService{
		fileRepo:   fileRepo,
		validator:  validator,
		authorizer: authorizer,
		storage:    storage,
		logger:     logger,
	}
}

// RecordFile stores metadata for an object the caller uploaded with a presigned URL
func (s *fileService) RecordFile(ctx context.Context, userID string, req *services.RecordFileRequest) (*models.File, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, req.WorkspaceID, models.ActionRecordFile); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Type = strings.TrimSpace(req.Type)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.FolderID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxFileNameLength)),
		validation.Field(&req.Type, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.ObjectPath, validation.Required, validation.By(ownUploadKey(userID))),
		validation.Field(&req.Size, validation.Min(int64(0))),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.validator.ValidateFolder(ctx, req.FolderID, req.WorkspaceID); err != nil {
		return nil, err
	}

	file := &models.File{
		WorkspaceID: req.WorkspaceID,
		FolderID:    req.FolderID,
		Name:        req.Name,
		Type:        req.Type,
		ObjectPath:  req.ObjectPath,
		Size:        req.Size,
		CreatedBy:   userID,
		CreatedAt:   time.Now(),
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, err
	}
	s.attachURL(ctx, file)

	s.logger.Info("file recorded",
		"id", file.ID,
		"workspace_id", file.WorkspaceID,
		"folder_id", file.FolderID,
		"object_path", file.ObjectPath,
	)
	return file, nil
}

// ownUploadKey only accepts keys minted by RequestUploadURL for this user
func ownUploadKey(userID string) validation.RuleFunc {
	prefix := uploadPrefix + userID + "/"
	return func(value interface{}) error {
		key, _ := value.(string)
		if !strings.HasPrefix(key, prefix) || strings.Contains(key, "..") {
			return errors.New("must be an upload key issued to you")
		}
		return nil
	}
}

func (s *fileService) GetFile(ctx context.Context, userID, workspaceID, fileID string) (*models.File, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionRead); err != nil {
		return nil, err
	}

	file, err := s.fileRepo.GetByID(ctx, fileID, workspaceID)
	if err != nil {
		return nil, err
	}
	s.attachURL(ctx, file)
	return file, nil
}

// ListFiles lists the files of one folder; an unknown folder is not found
func (s *fileService) ListFiles(ctx context.Context, userID, workspaceID, folderID string) ([]models.File, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionRead); err != nil {
		return nil, err
	}

	if _, err := s.validator.folderRepo.GetByID(ctx, folderID, workspaceID); err != nil {
		return nil, err
	}

	files, err := s.fileRepo.ListByFolder(ctx, folderID, workspaceID)
	if err != nil {
		return nil, err
	}
	for i := range files {
		s.attachURL(ctx, &files[i])
	}
	return files, nil
}

func (s *fileService) ListWorkspaceFiles(ctx context.Context, userID, workspaceID string) ([]models.File, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionRead); err != nil {
		return nil, err
	}

	files, err := s.fileRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	for i := range files {
		s.attachURL(ctx, &files[i])
	}
	return files, nil
}

// DeleteFile removes the metadata row, then the object. Deleting a missing file succeeds.
func (s *fileService) DeleteFile(ctx context.Context, userID, workspaceID, fileID string) error {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionDeleteFile); err != nil {
		return err
	}

	file, err := s.fileRepo.GetByID(ctx, fileID, workspaceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	deleted, err := s.fileRepo.Delete(ctx, fileID, workspaceID)
	if err != nil {
		return err
	}
	if !deleted {
		// Lost a race with another delete
		return nil
	}

	removeObjects(ctx, s.storage, s.logger, []string{file.ObjectPath})
	s.logger.Info("file deleted", "id", fileID, "workspace_id", workspaceID, "object_path", file.ObjectPath)
	return nil
}

// attachURL fills the read URL. A signing failure leaves it empty rather than failing the read.
func (s *fileService) attachURL(ctx context.Context, file *models.File) {
	u, err := s.storage.ReadURL(ctx, file.ObjectPath)
	if err != nil {
		s.logger.Warn("failed to build read url", "file_id", file.ID, "error", err)
		return
	}
	file.URL = u
}
