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

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFileRepository creates a new file metadata repository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const fileColumns = `id, workspace_id, folder_id, name, type, object_path, size, created_by, created_at`

// Create records file metadata
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, folder_id, name, type, object_path, size, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.WorkspaceID,
		file.FolderID,
		file.Name,
		file.Type,
		file.ObjectPath,
		file.Size,
		file.CreatedBy,
		file.CreatedAt,
	).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return &domain.ValidationError{Message: "folder does not belong to this workspace", Reason: domain.KindInvalidFolder}
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves file metadata by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, fileColumns, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("file", id)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return file, nil
}

// ListByFolder lists files directly inside a folder
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID, workspaceID string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE folder_id = $1 AND workspace_id = $2
		ORDER BY created_at ASC
	`, fileColumns, r.tables.Files)

	return r.queryFiles(ctx, query, folderID, workspaceID)
}

// ListByWorkspace lists all files in a workspace
func (r *PostgresFileRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE workspace_id = $1
		ORDER BY created_at ASC
	`, fileColumns, r.tables.Files)

	return r.queryFiles(ctx, query, workspaceID)
}

// Delete removes file metadata
func (r *PostgresFileRepository) Delete(ctx context.Context, id, workspaceID string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND workspace_id = $2`, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, workspaceID)
	if err != nil {
		if IsPgInvalidTextError(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete file: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// DeleteByFolder removes a folder's files, returning their object paths
func (r *PostgresFileRepository) DeleteByFolder(ctx context.Context, folderID, workspaceID string) ([]string, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE folder_id = $1 AND workspace_id = $2
		RETURNING object_path
	`, r.tables.Files)

	return r.deleteReturningPaths(ctx, query, folderID, workspaceID)
}

// DeleteByWorkspace removes all files of a workspace, returning their object paths
func (r *PostgresFileRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) ([]string, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE workspace_id = $1
		RETURNING object_path
	`, r.tables.Files)

	return r.deleteReturningPaths(ctx, query, workspaceID)
}

func (r *PostgresFileRepository) deleteReturningPaths(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("delete files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan object path: %w", err)
		}
		paths = append(paths, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("delete files: %w", err)
	}

	return paths, nil
}

func (r *PostgresFileRepository) queryFiles(ctx context.Context, query string, args ...interface{}) ([]models.File, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	files := make([]models.File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

func scanFile(row pgx.Row) (*models.File, error) {
	var f models.File
	err := row.Scan(
		&f.ID,
		&f.WorkspaceID,
		&f.FolderID,
		&f.Name,
		&f.Type,
		&f.ObjectPath,
		&f.Size,
		&f.CreatedBy,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
