package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
)

// PostgresWorkspaceRepository implements the WorkspaceRepository interface
type PostgresWorkspaceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(config *RepositoryConfig) repositories.WorkspaceRepository {
	return &PostgresWorkspaceRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new workspace
func (r *PostgresWorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.Workspaces)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		ws.Name,
		ws.Description,
		ws.CreatedBy,
		ws.CreatedAt,
		ws.UpdatedAt,
	).Scan(&ws.ID, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	return nil
}

// GetByID retrieves a workspace by ID
func (r *PostgresWorkspaceRepository) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, created_by, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Workspaces)

	var ws models.Workspace
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&ws.ID,
		&ws.Name,
		&ws.Description,
		&ws.CreatedBy,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("workspace", id)
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	return &ws, nil
}

// ListForUser lists the user's workspaces with their role in each
func (r *PostgresWorkspaceRepository) ListForUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT w.id, w.name, w.description, w.created_by, w.created_at, w.updated_at, m.role
		FROM %s w
		JOIN %s m ON m.workspace_id = w.id
		WHERE m.user_id = $1
		ORDER BY w.created_at ASC
	`, r.tables.Workspaces, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	workspaces := make([]models.Workspace, 0)
	for rows.Next() {
		var ws models.Workspace
		if err := rows.Scan(
			&ws.ID,
			&ws.Name,
			&ws.Description,
			&ws.CreatedBy,
			&ws.CreatedAt,
			&ws.UpdatedAt,
			&ws.Role,
		); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, ws)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}

	return workspaces, nil
}

// Update updates name and description
func (r *PostgresWorkspaceRepository) Update(ctx context.Context, ws *models.Workspace) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Workspaces)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ws.Name, ws.Description, ws.UpdatedAt, ws.ID)
	if err != nil {
		return fmt.Errorf("update workspace: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("workspace", ws.ID)
	}

	return nil
}

// Delete deletes a workspace; owned rows cascade
func (r *PostgresWorkspaceRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Workspaces)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}

	return nil
}
