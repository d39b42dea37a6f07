package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
)

// PostgresCommentRepository implements the CommentRepository interface
type PostgresCommentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCommentRepository creates a new task comment repository
func NewCommentRepository(config *RepositoryConfig) repositories.CommentRepository {
	return &PostgresCommentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create adds a comment
func (r *PostgresCommentRepository) Create(ctx context.Context, c *models.TaskComment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (task_id, workspace_id, body, media_timestamp, file_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.tables.TaskComments)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		c.TaskID,
		c.WorkspaceID,
		c.Body,
		c.MediaTimestamp,
		c.FileID,
		c.CreatedBy,
		c.CreatedAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return domain.NewNotFound("task", c.TaskID)
		}
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment
func (r *PostgresCommentRepository) GetByID(ctx context.Context, id, taskID string) (*models.TaskComment, error) {
	query := fmt.Sprintf(`
		SELECT id, task_id, workspace_id, body, media_timestamp, file_id, created_by, created_at
		FROM %s
		WHERE id = $1 AND task_id = $2
	`, r.tables.TaskComments)

	var c models.TaskComment
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, taskID).Scan(
		&c.ID,
		&c.TaskID,
		&c.WorkspaceID,
		&c.Body,
		&c.MediaTimestamp,
		&c.FileID,
		&c.CreatedBy,
		&c.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("comment", id)
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &c, nil
}

// ListByTask lists a task's comments oldest first
func (r *PostgresCommentRepository) ListByTask(ctx context.Context, taskID string) ([]models.TaskComment, error) {
	query := fmt.Sprintf(`
		SELECT id, task_id, workspace_id, body, media_timestamp, file_id, created_by, created_at
		FROM %s
		WHERE task_id = $1
		ORDER BY created_at ASC
	`, r.tables.TaskComments)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.TaskComment, 0)
	for rows.Next() {
		var c models.TaskComment
		if err := rows.Scan(
			&c.ID,
			&c.TaskID,
			&c.WorkspaceID,
			&c.Body,
			&c.MediaTimestamp,
			&c.FileID,
			&c.CreatedBy,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// Delete removes a comment
func (r *PostgresCommentRepository) Delete(ctx context.Context, id, taskID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND task_id = $2`, r.tables.TaskComments)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id, taskID); err != nil {
		if IsPgInvalidTextError(err) {
			return nil
		}
		return fmt.Errorf("delete comment: %w", err)
	}

	return nil
}
