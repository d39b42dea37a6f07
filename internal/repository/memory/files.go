package memory

import (
	"context"
	"sort"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
)

type FileRepository struct{ s *Store }

func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if f, ok := r.s.folders[file.FolderID]; !ok || f.WorkspaceID != file.WorkspaceID {
		return &domain.ValidationError{Message: "folder does not belong to this workspace", Reason: domain.KindInvalidFolder}
	}

	file.ID = r.s.newIDLocked()
	stamp(&file.CreatedAt)
	cp := *file
	cp.URL = ""
	r.s.files[file.ID] = &cp
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.files[id]
	if !ok || f.WorkspaceID != workspaceID {
		return nil, domain.NewNotFound("file", id)
	}
	cp := *f
	return &cp, nil
}

func (r *FileRepository) ListByFolder(ctx context.Context, folderID, workspaceID string) ([]models.File, error) {
	return r.list(func(f *models.File) bool {
		return f.WorkspaceID == workspaceID && f.FolderID == folderID
	}), nil
}

func (r *FileRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.File, error) {
	return r.list(func(f *models.File) bool { return f.WorkspaceID == workspaceID }), nil
}

func (r *FileRepository) Delete(ctx context.Context, id, workspaceID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.files[id]
	if !ok || f.WorkspaceID != workspaceID {
		return false, nil
	}
	r.s.deleteFileLocked(id)
	return true, nil
}

func (r *FileRepository) DeleteByFolder(ctx context.Context, folderID, workspaceID string) ([]string, error) {
	return r.deleteWhere(func(f *models.File) bool {
		return f.WorkspaceID == workspaceID && f.FolderID == folderID
	}), nil
}

func (r *FileRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) ([]string, error) {
	return r.deleteWhere(func(f *models.File) bool { return f.WorkspaceID == workspaceID }), nil
}

func (r *FileRepository) list(match func(*models.File) bool) []models.File {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.File, 0)
	for _, f := range r.s.files {
		if match(f) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.s.before(out[i].ID, out[j].ID) })
	return out
}

func (r *FileRepository) deleteWhere(match func(*models.File) bool) []string {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var paths []string
	for k, f := range r.s.files {
		if match(f) {
			paths = append(paths, f.ObjectPath)
			r.s.deleteFileLocked(k)
		}
	}
	sort.Strings(paths)
	return paths
}
