package task

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

type taskService struct {
	tasks      repositories.TaskRepository
	comments   repositories.CommentRepository
	members    repositories.MemberRepository
	files      repositories.FileRepository
	authorizer services.WorkspaceAuthorizer
	logger     *slog.Logger
}

// NewTaskService creates a new kanban task service
func NewTaskService(
	tasks repositories.TaskRepository,
	comments repositories.CommentRepository,
	members repositories.MemberRepository,
	files repositories.FileRepository,
	authorizer services.WorkspaceAuthorizer,
	logger *slog.Logger,
) services.TaskService {
	return &taskService{
		tasks:      tasks,
		comments:   comments,
		members:    members,
		files:      files,
		authorizer: authorizer,
		logger:     logger,
	}
}

func parseStatus(raw string) (models.TaskStatus, error) {
	status, err := models.ParseTaskStatus(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: status: %v", domain.ErrValidation, err)
	}
	return status, nil
}

func validateTitle(title string) error {
	if err := validation.Validate(title, validation.Required, validation.Length(1, config.MaxTaskTitleLength)); err != nil {
		return fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
	}
	return nil
}

func normalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// checkAssignee requires the assignee to be a member of the workspace
func (s *taskService) checkAssignee(ctx context.Context, workspaceID string, assigneeID *string) error {
	if assigneeID == nil {
		return nil
	}
	if _, err := s.members.Get(ctx, workspaceID, *assigneeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.ValidationError{Message: "assignee is not a member of this workspace"}
		}
		return err
	}
	return nil
}

func (s *taskService) ListTasks(ctx context.Context, userID, workspaceID string) ([]models.Task, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionRead); err != nil {
		return nil, err
	}
	return s.tasks.List(ctx, workspaceID)
}

// CreateTask appends a task to the end of its column
func (s *taskService) CreateTask(ctx context.Context, userID, workspaceID string, req *services.CreateTaskRequest) (*models.Task, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionManageTasks); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	status := models.TaskTodo
	if req.Status != "" {
		parsed, err := parseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	if err := s.checkAssignee(ctx, workspaceID, req.AssigneeID); err != nil {
		return nil, err
	}

	position, err := s.tasks.NextPosition(ctx, workspaceID, status)
	if err != nil {
		return nil, fmt.Errorf("next position: %w", err)
	}

	task := &models.Task{
		WorkspaceID:     workspaceID,
		Title:           title,
		Description:     normalizeText(req.Description),
		Status:          status,
		Position:        position,
		AssigneeID:      req.AssigneeID,
		DueDate:         req.DueDate,
		InterrogationID: req.InterrogationID,
		CreatedBy:       userID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task created", "id", task.ID, "workspace_id", workspaceID, "status", status)
	return task, nil
}

// UpdateTask applies the patch only if req.Version matches the stored version.
// Moving to another column without an explicit position appends to its end.
func (s *taskService) UpdateTask(ctx context.Context, userID, workspaceID, taskID string, req *services.UpdateTaskRequest) (*models.Task, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionManageTasks); err != nil {
		return nil, err
	}
	if req.Version < 1 {
		return nil, &domain.ValidationError{Message: "version is required"}
	}

	task, err := s.tasks.GetByID(ctx, taskID, workspaceID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		task.Title = title
	}
	if req.Description.Present {
		task.Description = normalizeText(req.Description.Value)
	}
	if req.AssigneeID.Present {
		if err := s.checkAssignee(ctx, workspaceID, req.AssigneeID.Value); err != nil {
			return nil, err
		}
		task.AssigneeID = req.AssigneeID.Value
	}
	if req.DueDate.Present {
		task.DueDate = req.DueDate.Value
	}

	if req.Status != nil {
		status, err := parseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		if status != task.Status && req.Position == nil {
			position, err := s.tasks.NextPosition(ctx, workspaceID, status)
			if err != nil {
				return nil, fmt.Errorf("next position: %w", err)
			}
			task.Position = position
		}
		task.Status = status
	}
	if req.Position != nil {
		if *req.Position < 0 {
			return nil, &domain.ValidationError{Message: "position must not be negative"}
		}
		task.Position = *req.Position
	}

	task.UpdatedAt = time.Now()
	if err := s.tasks.UpdateIfVersion(ctx, task, req.Version); err != nil {
		return nil, err
	}

	s.logger.Debug("task updated", "id", task.ID, "version", task.Version)
	return task, nil
}

// DeleteTask is idempotent
func (s *taskService) DeleteTask(ctx context.Context, userID, workspaceID, taskID string) error {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionManageTasks); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID, workspaceID); err != nil {
		return err
	}
	s.logger.Info("task deleted", "id", taskID, "workspace_id", workspaceID)
	return nil
}

func (s *taskService) ListComments(ctx context.Context, userID, workspaceID, taskID string) ([]models.TaskComment, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionRead); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, taskID, workspaceID); err != nil {
		return nil, err
	}
	return s.comments.ListByTask(ctx, taskID)
}

// AddComment attaches a note to a task. A referenced file must live in the same workspace.
func (s *taskService) AddComment(ctx context.Context, userID, workspaceID, taskID string, req *services.AddCommentRequest) (*models.TaskComment, error) {
	if _, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionComment); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, taskID, workspaceID); err != nil {
		return nil, err
	}

	req.Body = strings.TrimSpace(req.Body)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Body, validation.Required, validation.Length(1, config.MaxCommentLength)),
		validation.Field(&req.MediaTimestamp, validation.Min(0.0)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if req.MediaTimestamp != nil && req.FileID == nil {
		return nil, &domain.ValidationError{Message: "mediaTimestamp requires fileId"}
	}
	if req.FileID != nil {
		if _, err := s.files.GetByID(ctx, *req.FileID, workspaceID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, &domain.ValidationError{Message: "file does not belong to this workspace"}
			}
			return nil, err
		}
	}

	comment := &models.TaskComment{
		TaskID:         taskID,
		WorkspaceID:    workspaceID,
		Body:           req.Body,
		MediaTimestamp: req.MediaTimestamp,
		FileID:         req.FileID,
		CreatedBy:      userID,
		CreatedAt:      time.Now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment lets authors remove their own comments and admins remove any
func (s *taskService) DeleteComment(ctx context.Context, userID, workspaceID, taskID, commentID string) error {
	member, err := s.authorizer.Authorize(ctx, userID, workspaceID, models.ActionComment)
	if err != nil {
		return err
	}
	if _, err := s.tasks.GetByID(ctx, taskID, workspaceID); err != nil {
		return err
	}

	comment, err := s.comments.GetByID(ctx, commentID, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if comment.CreatedBy != userID && member.Role != models.RoleAdmin {
		return &domain.ForbiddenError{Message: "only the author or an admin can delete this comment"}
	}
	return s.comments.Delete(ctx, commentID, taskID)
}
