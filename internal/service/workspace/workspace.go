package workspace

import (
	"context"
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

// maxDescriptionLength bounds workspace descriptions
const maxDescriptionLength = 2000

// Repositories groups everything a workspace owns, for cascading deletes
type Repositories struct {
	Workspaces     repositories.WorkspaceRepository
	Members        repositories.MemberRepository
	Users          repositories.UserRepository
	Folders        repositories.FolderRepository
	Files          repositories.FileRepository
	Tasks          repositories.TaskRepository
	Interrogations repositories.InterrogationRepository
}

type workspaceService struct {
	repos      Repositories
	txManager  repositories.TransactionManager
	authorizer services.WorkspaceAuthorizer
	storage    services.ObjectStorage
	logger     *slog.Logger
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(
	repos Repositories,
	txManager repositories.TransactionManager,
	authorizer services.WorkspaceAuthorizer,
	storage services.ObjectStorage,
	logger *slog.Logger,
) services.WorkspaceService {
	return &workspaceService{
		repos:      repos,
		txManager:  txManager,
		authorizer: authorizer,
		storage:    storage,
		logger:     logger,
	}
}

func normalizeDescription(d *string) *string {
	if d == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// CreateWorkspace creates the workspace and its first admin membership atomically
func (s *workspaceService) CreateWorkspace(ctx context.Context, userID string, req *services.CreateWorkspaceRequest) (*models.Workspace, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = normalizeDescription(req.Description)

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxWorkspaceNameLength)),
		validation.Field(&req.Description, validation.Length(0, maxDescriptionLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	ws := &models.Workspace{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Workspaces.Create(txCtx, ws); err != nil {
			return err
		}
		return s.repos.Members.Add(txCtx, &models.WorkspaceMember{
			WorkspaceID: ws.ID,
			UserID:      userID,
			Role:        models.RoleAdmin,
			AddedAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}
	ws.Role = models.RoleAdmin

	s.logger.Info("workspace created", "id", ws.ID, "name", ws.Name, "user_id", userID)
	return ws, nil
}

func (s *workspaceService) ListWorkspaces(ctx context.Context, userID string) ([]models.Workspace, error) {
	return s.repos.Workspaces.ListForUser(ctx, userID)
}

func (s *workspaceService) GetWorkspace(ctx context.Context, userID, workspaceID string) (*models.Workspace, error) {
	member, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionRead)
	if err != nil {
		return nil, err
	}

	ws, err := s.repos.Workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	ws.Role = member.Role
	return ws, nil
}

func (s *workspaceService) UpdateWorkspace(ctx context.Context, userID, workspaceID string, req *services.UpdateWorkspaceRequest) (*models.Workspace, error) {
	member, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionUpdateWorkspace)
	if err != nil {
		return nil, err
	}

	ws, err := s.repos.Workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validation.Validate(name, validation.Required, validation.Length(1, config.MaxWorkspaceNameLength)); err != nil {
			return nil, fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
		}
		ws.Name = name
	}

	// Tri-state: only touch the description if the field was present
	if req.Description.Present {
		ws.Description = normalizeDescription(req.Description.Value)
		if err := validation.Validate(ws.Description, validation.Length(0, maxDescriptionLength)); err != nil {
			return nil, fmt.Errorf("%w: description: %v", domain.ErrValidation, err)
		}
	}

	ws.UpdatedAt = time.Now()
	if err := s.repos.Workspaces.Update(ctx, ws); err != nil {
		return nil, err
	}
	ws.Role = member.Role

	s.logger.Info("workspace updated", "id", ws.ID, "user_id", userID)
	return ws, nil
}

// DeleteWorkspace removes every row the workspace owns in one transaction, then the stored objects
func (s *workspaceService) DeleteWorkspace(ctx context.Context, userID, workspaceID string) error {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionDeleteWorkspace); err != nil {
		return err
	}

	var objectPaths []string
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Interrogations.DeleteByWorkspace(txCtx, workspaceID); err != nil {
			return fmt.Errorf("delete interrogations: %w", err)
		}
		if err := s.repos.Tasks.DeleteByWorkspace(txCtx, workspaceID); err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		paths, err := s.repos.Files.DeleteByWorkspace(txCtx, workspaceID)
		if err != nil {
			return fmt.Errorf("delete files: %w", err)
		}
		objectPaths = paths
		if err := s.repos.Folders.DeleteByWorkspace(txCtx, workspaceID); err != nil {
			return fmt.Errorf("delete folders: %w", err)
		}
		if err := s.repos.Members.DeleteByWorkspace(txCtx, workspaceID); err != nil {
			return fmt.Errorf("delete members: %w", err)
		}
		return s.repos.Workspaces.Delete(txCtx, workspaceID)
	})
	if err != nil {
		return err
	}

	for _, p := range objectPaths {
		if err := s.storage.Delete(ctx, p); err != nil {
			s.logger.Warn("failed to delete stored object", "object_path", p, "error", err)
		}
	}

	s.logger.Info("workspace deleted", "id", workspaceID, "user_id", userID, "files_deleted", len(objectPaths))
	return nil
}
