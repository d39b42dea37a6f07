package handler

import (
	"log/slog"
	"net/http"

	"thecrew/internal/domain/services"
	"thecrew/internal/httputil"
)

// TaskHandler handles kanban tasks and their comments
type TaskHandler struct {
	tasks  services.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks services.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// updateTaskDTO is the PATCH body. Nullable fields are tri-state; version is required.
type updateTaskDTO struct {
	Version     int                     `json:"version"`
	Title       *string                 `json:"title,omitempty"`
	Description httputil.OptionalString `json:"description"`
	Status      *string                 `json:"status,omitempty"`
	Position    *int                    `json:"position,omitempty"`
	AssigneeID  httputil.OptionalString `json:"assigneeId"`
	DueDate     httputil.OptionalTime   `json:"dueDate"`
}

func (d *updateTaskDTO) toRequest() *services.UpdateTaskRequest {
	return &services.UpdateTaskRequest{
		Version:     d.Version,
		Title:       d.Title,
		Description: toOptional(d.Description.Present, d.Description.Value),
		Status:      d.Status,
		Position:    d.Position,
		AssigneeID:  toOptional(d.AssigneeID.Present, d.AssigneeID.Value),
		DueDate:     toOptional(d.DueDate.Present, d.DueDate.Value),
	}
}

// ListTasks lists tasks by column and position
// GET /api/workspaces/{id}/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), httputil.GetUserID(r), workspaceID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tasks)
}

// CreateTask appends a task to its column
// POST /api/workspaces/{id}/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}

	var req services.CreateTaskRequest
	if !decode(w, r, &req) {
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), httputil.GetUserID(r), workspaceID, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, task)
}

// UpdateTask applies a versioned partial update
// PATCH /api/workspaces/{id}/tasks/{taskId}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}
	taskID, ok := PathParam(w, r, "taskId", "Task ID")
	if !ok {
		return
	}

	var dto updateTaskDTO
	if !decode(w, r, &dto) {
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), httputil.GetUserID(r), workspaceID, taskID, dto.toRequest())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes a task and its comments
// DELETE /api/workspaces/{id}/tasks/{taskId}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}
	taskID, ok := PathParam(w, r, "taskId", "Task ID")
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), httputil.GetUserID(r), workspaceID, taskID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListComments lists a task's comments, oldest first
// GET /api/workspaces/{id}/tasks/{taskId}/comments
func (h *TaskHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}
	taskID, ok := PathParam(w, r, "taskId", "Task ID")
	if !ok {
		return
	}

	comments, err := h.tasks.ListComments(r.Context(), httputil.GetUserID(r), workspaceID, taskID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, comments)
}

// AddComment posts a comment, optionally pinned to a media timestamp
// POST /api/workspaces/{id}/tasks/{taskId}/comments
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}
	taskID, ok := PathParam(w, r, "taskId", "Task ID")
	if !ok {
		return
	}

	var req services.AddCommentRequest
	if !decode(w, r, &req) {
		return
	}

	comment, err := h.tasks.AddComment(r.Context(), httputil.GetUserID(r), workspaceID, taskID, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, comment)
}

// DeleteComment deletes a comment
// DELETE /api/workspaces/{id}/tasks/{taskId}/comments/{commentId}
func (h *TaskHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "Workspace ID")
	if !ok {
		return
	}
	taskID, ok := PathParam(w, r, "taskId", "Task ID")
	if !ok {
		return
	}
	commentID, ok := PathParam(w, r, "commentId", "Comment ID")
	if !ok {
		return
	}

	if err := h.tasks.DeleteComment(r.Context(), httputil.GetUserID(r), workspaceID, taskID, commentID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
