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

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const folderColumns = `id, workspace_id, parent_id, name, created_by, created_at, updated_at`

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, parent_id, name, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.WorkspaceID,
		folder.ParentID,
		folder.Name,
		folder.CreatedBy,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			// Parent vanished between validation and insert
			return &domain.ValidationError{Message: "parent folder does not exist in this workspace", Reason: domain.KindInvalidParent}
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, folderColumns, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("folder", id)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// Update renames a folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = $2
		WHERE id = $3 AND workspace_id = $4
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.Name,
		folder.UpdatedAt,
		folder.ID,
		folder.WorkspaceID,
	)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("folder", folder.ID)
	}

	return nil
}

// Delete deletes a folder. Already-deleted folders are not an error.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id, workspaceID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id, workspaceID); err != nil {
		if IsPgInvalidTextError(err) {
			return nil
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	return nil
}

// ListChildren lists immediate child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, folderID *string, workspaceID string) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if folderID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE workspace_id = $1 AND parent_id IS NULL
			ORDER BY name ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, workspaceID)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE workspace_id = $1 AND parent_id = $2
			ORDER BY name ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, workspaceID, *folderID)
	}

	return r.queryFolders(ctx, query, args...)
}

// ListByWorkspace retrieves all folders in a workspace (flat list)
func (r *PostgresFolderRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = $1
		ORDER BY created_at ASC
	`, folderColumns, r.tables.Folders)

	return r.queryFolders(ctx, query, workspaceID)
}

// DeleteByWorkspace deletes every folder of a workspace
func (r *PostgresFolderRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE workspace_id = $1`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, workspaceID); err != nil {
		return fmt.Errorf("delete workspace folders: %w", err)
	}

	return nil
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, query string, args ...interface{}) ([]models.Folder, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := make([]models.Folder, 0)
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.WorkspaceID,
		&folder.ParentID,
		&folder.Name,
		&folder.CreatedBy,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}
