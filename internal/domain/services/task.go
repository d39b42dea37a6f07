package services

import (
	"context"
	"time"

	"thecrew/internal/domain/models"
)

// TaskService handles the kanban board
type TaskService interface {
	ListTasks(ctx context.Context, userID, workspaceID string) ([]models.Task, error)
	CreateTask(ctx context.Context, userID, workspaceID string, req *CreateTaskRequest) (*models.Task, error)

	// UpdateTask applies a partial update conditional on req.Version
	UpdateTask(ctx context.Context, userID, workspaceID, taskID string, req *UpdateTaskRequest) (*models.Task, error)

	DeleteTask(ctx context.Context, userID, workspaceID, taskID string) error

	ListComments(ctx context.Context, userID, workspaceID, taskID string) ([]models.TaskComment, error)
	AddComment(ctx context.Context, userID, workspaceID, taskID string, req *AddCommentRequest) (*models.TaskComment, error)

	// DeleteComment is allowed for the author and for admins
	DeleteComment(ctx context.Context, userID, workspaceID, taskID, commentID string) error
}

type CreateTaskRequest struct {
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	Status          string     `json:"status,omitempty"`
	AssigneeID      *string    `json:"assigneeId,omitempty"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	InterrogationID *string    `json:"-"`
}

// UpdateTaskRequest represents a conditional partial update (no json tags - mapped from handler DTO)
type UpdateTaskRequest struct {
	Version     int
	Title       *string
	Description Optional[string]
	Status      *string
	Position    *int
	AssigneeID  Optional[string]
	DueDate     Optional[time.Time]
}

type AddCommentRequest struct {
	Body           string   `json:"body"`
	MediaTimestamp *float64 `json:"mediaTimestamp,omitempty"`
	FileID         *string  `json:"fileId,omitempty"`
}
