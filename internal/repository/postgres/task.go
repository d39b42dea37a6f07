package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
)

// PostgresTaskRepository implements the TaskRepository interface
type PostgresTaskRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(config *RepositoryConfig) repositories.TaskRepository {
	return &PostgresTaskRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const taskColumns = `id, workspace_id, title, description, status, position, assignee_id, due_date,
	interrogation_id, created_by, created_at, updated_at, version`

// Create creates a new task at version 1
func (r *PostgresTaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, title, description, status, position, assignee_id, due_date,
			interrogation_id, created_by, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)
		RETURNING id, created_at, updated_at, version
	`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		task.WorkspaceID,
		task.Title,
		task.Description,
		task.Status,
		task.Position,
		task.AssigneeID,
		task.DueDate,
		task.InterrogationID,
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt, &task.Version)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task
func (r *PostgresTaskRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, taskColumns, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	task, err := scanTask(executor.QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("task", id)
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	return task, nil
}

// List lists tasks grouped by column then position
func (r *PostgresTaskRepository) List(ctx context.Context, workspaceID string) ([]models.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE workspace_id = $1
		ORDER BY CASE status WHEN 'todo' THEN 0 WHEN 'in_progress' THEN 1 WHEN 'review' THEN 2 ELSE 3 END,
			position ASC, created_at ASC
	`, taskColumns, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

// NextPosition returns the position after the last task in the column
func (r *PostgresTaskRepository) NextPosition(ctx context.Context, workspaceID string, status models.TaskStatus) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(position) + 1, 0) FROM %s
		WHERE workspace_id = $1 AND status = $2
	`, r.tables.Tasks)

	var pos int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, workspaceID, status).Scan(&pos); err != nil {
		return 0, fmt.Errorf("next task position: %w", err)
	}

	return pos, nil
}

// UpdateIfVersion writes the task when the stored version matches
func (r *PostgresTaskRepository) UpdateIfVersion(ctx context.Context, task *models.Task, expectedVersion int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, status = $3, position = $4, assignee_id = $5,
			due_date = $6, updated_at = $7, version = version + 1
		WHERE id = $8 AND workspace_id = $9 AND version = $10
		RETURNING version, updated_at
	`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.Position,
		task.AssigneeID,
		task.DueDate,
		task.UpdatedAt,
		task.ID,
		task.WorkspaceID,
		expectedVersion,
	).Scan(&task.Version, &task.UpdatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			// Distinguish a concurrent edit from a deleted task
			if _, getErr := r.GetByID(ctx, task.ID, task.WorkspaceID); getErr != nil {
				return getErr
			}
			return &domain.ConflictError{
				Message:      "task was modified by someone else; reload and retry",
				ResourceType: "task",
				ResourceID:   task.ID,
				Reason:       domain.KindVersionConflict,
			}
		}
		return fmt.Errorf("update task: %w", err)
	}

	return nil
}

// Delete deletes a task; comments cascade
func (r *PostgresTaskRepository) Delete(ctx context.Context, id, workspaceID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND workspace_id = $2`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id, workspaceID); err != nil {
		if IsPgInvalidTextError(err) {
			return nil
		}
		return fmt.Errorf("delete task: %w", err)
	}

	return nil
}

// DeleteByWorkspace deletes all tasks of a workspace
func (r *PostgresTaskRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE workspace_id = $1`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, workspaceID); err != nil {
		return fmt.Errorf("delete workspace tasks: %w", err)
	}

	return nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID,
		&t.WorkspaceID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Position,
		&t.AssigneeID,
		&t.DueDate,
		&t.InterrogationID,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
