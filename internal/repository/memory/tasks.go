package memory

import (
	"context"
	"sort"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
)

type TaskRepository struct{ s *Store }

var statusRank = map[models.TaskStatus]int{
	models.TaskTodo:       0,
	models.TaskInProgress: 1,
	models.TaskReview:     2,
	models.TaskDone:       3,
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.workspaces[task.WorkspaceID]; !ok {
		return domain.NewNotFound("workspace", task.WorkspaceID)
	}

	task.ID = r.s.newIDLocked()
	task.Version = 1
	stamp(&task.CreatedAt)
	stamp(&task.UpdatedAt)
	cp := *task
	r.s.tasks[task.ID] = &cp
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok || t.WorkspaceID != workspaceID {
		return nil, domain.NewNotFound("task", id)
	}
	cp := *t
	return &cp, nil
}

func (r *TaskRepository) List(ctx context.Context, workspaceID string) ([]models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Task, 0)
	for _, t := range r.s.tasks {
		if t.WorkspaceID == workspaceID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if statusRank[out[i].Status] != statusRank[out[j].Status] {
			return statusRank[out[i].Status] < statusRank[out[j].Status]
		}
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return r.s.before(out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *TaskRepository) NextPosition(ctx context.Context, workspaceID string, status models.TaskStatus) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	next := 0
	for _, t := range r.s.tasks {
		if t.WorkspaceID == workspaceID && t.Status == status && t.Position >= next {
			next = t.Position + 1
		}
	}
	return next, nil
}

func (r *TaskRepository) UpdateIfVersion(ctx context.Context, task *models.Task, expectedVersion int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tasks[task.ID]
	if !ok || existing.WorkspaceID != task.WorkspaceID {
		return domain.NewNotFound("task", task.ID)
	}
	if existing.Version != expectedVersion {
		return &domain.ConflictError{
			Message:      "task was modified by someone else; reload and retry",
			ResourceType: "task",
			ResourceID:   task.ID,
			Reason:       domain.KindVersionConflict,
		}
	}

	task.Version = existing.Version + 1
	cp := *task
	cp.CreatedAt = existing.CreatedAt
	cp.CreatedBy = existing.CreatedBy
	cp.InterrogationID = existing.InterrogationID
	r.s.tasks[task.ID] = &cp
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, workspaceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if t, ok := r.s.tasks[id]; ok && t.WorkspaceID == workspaceID {
		r.s.deleteTaskLocked(id)
	}
	return nil
}

func (r *TaskRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k, t := range r.s.tasks {
		if t.WorkspaceID == workspaceID {
			r.s.deleteTaskLocked(k)
		}
	}
	return nil
}

type CommentRepository struct{ s *Store }

func (r *CommentRepository) Create(ctx context.Context, c *models.TaskComment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[c.TaskID]; !ok {
		return domain.NewNotFound("task", c.TaskID)
	}

	c.ID = r.s.newIDLocked()
	stamp(&c.CreatedAt)
	cp := *c
	r.s.comments[c.ID] = &cp
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id, taskID string) (*models.TaskComment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok || c.TaskID != taskID {
		return nil, domain.NewNotFound("comment", id)
	}
	cp := *c
	return &cp, nil
}

func (r *CommentRepository) ListByTask(ctx context.Context, taskID string) ([]models.TaskComment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.TaskComment, 0)
	for _, c := range r.s.comments {
		if c.TaskID == taskID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.s.before(out[i].ID, out[j].ID) })
	return out, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id, taskID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c, ok := r.s.comments[id]; ok && c.TaskID == taskID {
		delete(r.s.comments, id)
	}
	return nil
}
