package memory

import (
	"context"
	"sort"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
)

type MemberRepository struct{ s *Store }

func (r *MemberRepository) Add(ctx context.Context, member *models.WorkspaceMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.workspaces[member.WorkspaceID]; !ok {
		return domain.NewNotFound("workspace", member.WorkspaceID)
	}
	if _, ok := r.s.users[member.UserID]; !ok {
		return domain.NewNotFound("user", member.UserID)
	}
	for _, m := range r.s.members {
		if m.WorkspaceID == member.WorkspaceID && m.UserID == member.UserID {
			return &domain.ConflictError{Message: "user is already a member of this workspace", ResourceType: "member", ResourceID: m.ID}
		}
	}

	member.ID = r.s.newIDLocked()
	stamp(&member.AddedAt)
	cp := *member
	r.s.members[member.ID] = &cp
	return nil
}

func (r *MemberRepository) Get(ctx context.Context, workspaceID, userID string) (*models.WorkspaceMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, m := range r.s.members {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			return r.withUserLocked(m), nil
		}
	}
	return nil, domain.NewNotFound("member", userID)
}

func (r *MemberRepository) GetByID(ctx context.Context, workspaceID, memberID string) (*models.WorkspaceMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.members[memberID]
	if !ok || m.WorkspaceID != workspaceID {
		return nil, domain.NewNotFound("member", memberID)
	}
	return r.withUserLocked(m), nil
}

func (r *MemberRepository) List(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.WorkspaceMember, 0)
	for _, m := range r.s.members {
		if m.WorkspaceID == workspaceID {
			out = append(out, *r.withUserLocked(m))
		}
	}
	rank := map[models.Role]int{models.RoleAdmin: 0, models.RoleMember: 1, models.RoleViewer: 2}
	sort.Slice(out, func(i, j int) bool {
		if rank[out[i].Role] != rank[out[j].Role] {
			return rank[out[i].Role] < rank[out[j].Role]
		}
		return r.s.before(out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *MemberRepository) UpdateRole(ctx context.Context, workspaceID, memberID string, role models.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.members[memberID]
	if !ok || m.WorkspaceID != workspaceID {
		return domain.NewNotFound("member", memberID)
	}
	m.Role = role
	return nil
}

func (r *MemberRepository) Remove(ctx context.Context, workspaceID, memberID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.members[memberID]
	if !ok || m.WorkspaceID != workspaceID {
		return domain.NewNotFound("member", memberID)
	}
	delete(r.s.members, memberID)
	return nil
}

func (r *MemberRepository) CountByRole(ctx context.Context, workspaceID string, role models.Role) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, m := range r.s.members {
		if m.WorkspaceID == workspaceID && m.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *MemberRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k, m := range r.s.members {
		if m.WorkspaceID == workspaceID {
			delete(r.s.members, k)
		}
	}
	return nil
}

func (r *MemberRepository) withUserLocked(m *models.WorkspaceMember) *models.WorkspaceMember {
	cp := *m
	if u, ok := r.s.users[m.UserID]; ok {
		cp.Email = u.Email
		cp.Name = u.Name
	}
	return &cp
}
