package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
)

// PostgresMemberRepository implements the MemberRepository interface
type PostgresMemberRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMemberRepository creates a new membership repository
func NewMemberRepository(config *RepositoryConfig) repositories.MemberRepository {
	return &PostgresMemberRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Add inserts a membership
func (r *PostgresMemberRepository) Add(ctx context.Context, member *models.WorkspaceMember) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, user_id, role, added_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, added_at
	`, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		member.WorkspaceID,
		member.UserID,
		member.Role,
		member.AddedAt,
	).Scan(&member.ID, &member.AddedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "user is already a member of this workspace",
				ResourceType: "member",
			}
		}
		if IsPgForeignKeyError(err) {
			return domain.NewNotFound("workspace", member.WorkspaceID)
		}
		return fmt.Errorf("add member: %w", err)
	}

	return nil
}

// Get resolves (workspace, user) to a membership
func (r *PostgresMemberRepository) Get(ctx context.Context, workspaceID, userID string) (*models.WorkspaceMember, error) {
	query := fmt.Sprintf(`
		SELECT m.id, m.workspace_id, m.user_id, m.role, m.added_at, u.email, u.name
		FROM %s m
		JOIN %s u ON u.id = m.user_id
		WHERE m.workspace_id = $1 AND m.user_id = $2
	`, r.tables.Members, r.tables.Users)

	return r.getOne(ctx, query, workspaceID, userID)
}

// GetByID retrieves a membership by its own ID
func (r *PostgresMemberRepository) GetByID(ctx context.Context, workspaceID, memberID string) (*models.WorkspaceMember, error) {
	query := fmt.Sprintf(`
		SELECT m.id, m.workspace_id, m.user_id, m.role, m.added_at, u.email, u.name
		FROM %s m
		JOIN %s u ON u.id = m.user_id
		WHERE m.workspace_id = $1 AND m.id = $2
	`, r.tables.Members, r.tables.Users)

	return r.getOne(ctx, query, workspaceID, memberID)
}

func (r *PostgresMemberRepository) getOne(ctx context.Context, query, workspaceID, key string) (*models.WorkspaceMember, error) {
	var m models.WorkspaceMember
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, workspaceID, key).Scan(
		&m.ID,
		&m.WorkspaceID,
		&m.UserID,
		&m.Role,
		&m.AddedAt,
		&m.Email,
		&m.Name,
	)
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("member", key)
		}
		return nil, fmt.Errorf("get member: %w", err)
	}

	return &m, nil
}

// List lists members of a workspace, admins first
func (r *PostgresMemberRepository) List(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error) {
	query := fmt.Sprintf(`
		SELECT m.id, m.workspace_id, m.user_id, m.role, m.added_at, u.email, u.name
		FROM %s m
		JOIN %s u ON u.id = m.user_id
		WHERE m.workspace_id = $1
		ORDER BY CASE m.role WHEN 'admin' THEN 0 WHEN 'member' THEN 1 ELSE 2 END, m.added_at ASC
	`, r.tables.Members, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := make([]models.WorkspaceMember, 0)
	for rows.Next() {
		var m models.WorkspaceMember
		if err := rows.Scan(
			&m.ID,
			&m.WorkspaceID,
			&m.UserID,
			&m.Role,
			&m.AddedAt,
			&m.Email,
			&m.Name,
		); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}

// UpdateRole changes a member's role
func (r *PostgresMemberRepository) UpdateRole(ctx context.Context, workspaceID, memberID string, role models.Role) error {
	query := fmt.Sprintf(`
		UPDATE %s SET role = $1
		WHERE workspace_id = $2 AND id = $3
	`, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, role, workspaceID, memberID)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("member", memberID)
	}

	return nil
}

// Remove deletes a membership
func (r *PostgresMemberRepository) Remove(ctx context.Context, workspaceID, memberID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE workspace_id = $1 AND id = $2`, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, workspaceID, memberID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("member", memberID)
	}

	return nil
}

// CountByRole counts members holding the role. The matching rows are locked
// when called inside a transaction so concurrent last-admin checks serialize.
func (r *PostgresMemberRepository) CountByRole(ctx context.Context, workspaceID string, role models.Role) (int, error) {
	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE workspace_id = $1 AND role = $2
		FOR UPDATE
	`, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID, role)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}

	return count, nil
}

// DeleteByWorkspace removes all memberships of a workspace
func (r *PostgresMemberRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE workspace_id = $1`, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, workspaceID); err != nil {
		return fmt.Errorf("delete workspace members: %w", err)
	}

	return nil
}
