package memory

import (
	"context"
	"sort"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
)

type FolderRepository struct{ s *Store }

func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.workspaces[folder.WorkspaceID]; !ok {
		return domain.NewNotFound("workspace", folder.WorkspaceID)
	}
	if folder.ParentID != nil {
		if p, ok := r.s.folders[*folder.ParentID]; !ok || p.WorkspaceID != folder.WorkspaceID {
			return &domain.ValidationError{Message: "parent folder does not exist in this workspace", Reason: domain.KindInvalidParent}
		}
	}

	folder.ID = r.s.newIDLocked()
	stamp(&folder.CreatedAt)
	stamp(&folder.UpdatedAt)
	cp := *folder
	r.s.folders[folder.ID] = &cp
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.folders[id]
	if !ok || f.WorkspaceID != workspaceID {
		return nil, domain.NewNotFound("folder", id)
	}
	cp := *f
	return &cp, nil
}

func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.folders[folder.ID]
	if !ok || f.WorkspaceID != folder.WorkspaceID {
		return domain.NewNotFound("folder", folder.ID)
	}
	f.Name = folder.Name
	f.UpdatedAt = folder.UpdatedAt
	return nil
}

func (r *FolderRepository) Delete(ctx context.Context, id, workspaceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if f, ok := r.s.folders[id]; ok && f.WorkspaceID == workspaceID {
		r.s.deleteFolderLocked(id)
	}
	return nil
}

func (r *FolderRepository) ListChildren(ctx context.Context, folderID *string, workspaceID string) ([]models.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Folder, 0)
	for _, f := range r.s.folders {
		if f.WorkspaceID != workspaceID {
			continue
		}
		if (folderID == nil && f.ParentID == nil) ||
			(folderID != nil && f.ParentID != nil && *f.ParentID == *folderID) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *FolderRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Folder, 0)
	for _, f := range r.s.folders {
		if f.WorkspaceID == workspaceID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.s.before(out[i].ID, out[j].ID) })
	return out, nil
}

func (r *FolderRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k, f := range r.s.folders {
		if f.WorkspaceID == workspaceID {
			r.s.deleteFolderLocked(k)
		}
	}
	return nil
}
