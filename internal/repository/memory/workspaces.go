package memory

import (
	"context"
	"sort"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
)

type WorkspaceRepository struct{ s *Store }

func (r *WorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[ws.CreatedBy]; !ok {
		return domain.NewNotFound("user", ws.CreatedBy)
	}

	ws.ID = r.s.newIDLocked()
	stamp(&ws.CreatedAt)
	stamp(&ws.UpdatedAt)
	cp := *ws
	cp.Role = ""
	r.s.workspaces[ws.ID] = &cp
	return nil
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ws, ok := r.s.workspaces[id]
	if !ok {
		return nil, domain.NewNotFound("workspace", id)
	}
	cp := *ws
	return &cp, nil
}

func (r *WorkspaceRepository) ListForUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Workspace, 0)
	for _, m := range r.s.members {
		if m.UserID != userID {
			continue
		}
		if ws, ok := r.s.workspaces[m.WorkspaceID]; ok {
			cp := *ws
			cp.Role = m.Role
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.s.before(out[i].ID, out[j].ID) })
	return out, nil
}

func (r *WorkspaceRepository) Update(ctx context.Context, ws *models.Workspace) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.workspaces[ws.ID]
	if !ok {
		return domain.NewNotFound("workspace", ws.ID)
	}
	existing.Name = ws.Name
	existing.Description = ws.Description
	existing.UpdatedAt = ws.UpdatedAt
	return nil
}

func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.deleteWorkspaceLocked(id)
	return nil
}
