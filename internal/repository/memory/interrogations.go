package memory

import (
	"context"
	"sort"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
)

type InterrogationRepository struct{ s *Store }

func (r *InterrogationRepository) Create(ctx context.Context, it *models.Interrogation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.workspaces[it.WorkspaceID]; !ok {
		return domain.NewNotFound("workspace", it.WorkspaceID)
	}

	it.ID = r.s.newIDLocked()
	stamp(&it.CreatedAt)
	stamp(&it.UpdatedAt)
	r.s.interrogations[it.ID] = cloneInterrogation(it)
	return nil
}

func (r *InterrogationRepository) GetByID(ctx context.Context, id string) (*models.Interrogation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	it, ok := r.s.interrogations[id]
	if !ok {
		return nil, domain.NewNotFound("interrogation", id)
	}
	return cloneInterrogation(it), nil
}

func (r *InterrogationRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Interrogation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Interrogation, 0)
	for _, it := range r.s.interrogations {
		if it.WorkspaceID == workspaceID {
			out = append(out, *cloneInterrogation(it))
		}
	}
	// newest first
	sort.Slice(out, func(i, j int) bool { return r.s.before(out[j].ID, out[i].ID) })
	return out, nil
}

func (r *InterrogationRepository) Update(ctx context.Context, it *models.Interrogation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.interrogations[it.ID]
	if !ok {
		return domain.NewNotFound("interrogation", it.ID)
	}
	cp := cloneInterrogation(it)
	cp.WorkspaceID = existing.WorkspaceID
	cp.CreatedBy = existing.CreatedBy
	cp.CreatedAt = existing.CreatedAt
	r.s.interrogations[it.ID] = cp
	return nil
}

func (r *InterrogationRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k, it := range r.s.interrogations {
		if it.WorkspaceID == workspaceID {
			delete(r.s.interrogations, k)
		}
	}
	return nil
}

// cloneInterrogation deep-copies the slices and map so callers never share state with the store
func cloneInterrogation(it *models.Interrogation) *models.Interrogation {
	cp := *it
	cp.Materials = append([]models.Material(nil), it.Materials...)
	cp.History = append([]models.ChatTurn(nil), it.History...)
	cp.Answers = make(map[string]string, len(it.Answers))
	for k, v := range it.Answers {
		cp.Answers[k] = v
	}
	return &cp
}
