package repositories

import (
	"context"

	"thecrew/internal/domain/models"
)

// TaskRepository defines data access operations for kanban tasks
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id, workspaceID string) (*models.Task, error)
	List(ctx context.Context, workspaceID string) ([]models.Task, error)

	// NextPosition returns one past the highest position in the column
	NextPosition(ctx context.Context, workspaceID string, status models.TaskStatus) (int, error)

	// UpdateIfVersion writes the task only when the stored version equals expectedVersion.
	// On success task.Version is incremented; on mismatch a version_conflict ConflictError is returned.
	UpdateIfVersion(ctx context.Context, task *models.Task, expectedVersion int) error

	Delete(ctx context.Context, id, workspaceID string) error
	DeleteByWorkspace(ctx context.Context, workspaceID string) error
}

// CommentRepository defines data access operations for task comments
type CommentRepository interface {
	Create(ctx context.Context, comment *models.TaskComment) error
	GetByID(ctx context.Context, id, taskID string) (*models.TaskComment, error)
	ListByTask(ctx context.Context, taskID string) ([]models.TaskComment, error)
	Delete(ctx context.Context, id, taskID string) error
}
