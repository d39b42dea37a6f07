package models

import (
	"fmt"
	"time"
)

// TaskStatus is a kanban column.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

// ParseTaskStatus rejects unknown column names.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskTodo, TaskInProgress, TaskReview, TaskDone:
		return TaskStatus(s), nil
	default:
		return "", fmt.Errorf("unknown task status %q", s)
	}
}

type Task struct {
	ID              string     `json:"id"`
	WorkspaceID     string     `json:"workspaceId"`
	Title           string     `json:"title"`
	Description     *string    `json:"description"`
	Status          TaskStatus `json:"status"`
	Position        int        `json:"position"`
	AssigneeID      *string    `json:"assigneeId"`
	DueDate         *time.Time `json:"dueDate"`
	InterrogationID *string    `json:"interrogationId"`
	CreatedBy       string     `json:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	Version         int        `json:"version"`
}

// TaskComment is a note on a task, optionally pinned to a moment in a media file.
type TaskComment struct {
	ID             string    `json:"id"`
	TaskID         string    `json:"taskId"`
	WorkspaceID    string    `json:"workspaceId"`
	Body           string    `json:"body"`
	MediaTimestamp *float64  `json:"mediaTimestamp"` // Seconds into FileID
	FileID         *string   `json:"fileId"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}
