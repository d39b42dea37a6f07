package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/repositories"
)

// PostgresInterrogationRepository implements the InterrogationRepository interface.
// Materials, history and answers are stored as JSONB.
type PostgresInterrogationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewInterrogationRepository creates a new interrogation repository
func NewInterrogationRepository(config *RepositoryConfig) repositories.InterrogationRepository {
	return &PostgresInterrogationRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const interrogationColumns = `id, workspace_id, created_by, status, current_layer, summary,
	materials, history, answers, final_document, saved_at, created_at, updated_at`

// Create inserts a new session
func (r *PostgresInterrogationRepository) Create(ctx context.Context, it *models.Interrogation) error {
	materials, history, answers, err := encodeInterrogationJSON(it)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, created_by, status, current_layer, summary,
			materials, history, answers, final_document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, r.tables.Interrogations)

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		it.WorkspaceID,
		it.CreatedBy,
		it.Status,
		it.CurrentLayer,
		it.Summary,
		materials,
		history,
		answers,
		it.FinalDocument,
		it.CreatedAt,
		it.UpdatedAt,
	).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create interrogation: %w", err)
	}

	return nil
}

// GetByID retrieves a session
func (r *PostgresInterrogationRepository) GetByID(ctx context.Context, id string) (*models.Interrogation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, interrogationColumns, r.tables.Interrogations)

	executor := GetExecutor(ctx, r.pool)
	it, err := scanInterrogation(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, domain.NewNotFound("interrogation", id)
		}
		return nil, fmt.Errorf("get interrogation: %w", err)
	}

	return it, nil
}

// ListByWorkspace lists sessions newest first
func (r *PostgresInterrogationRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Interrogation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`, interrogationColumns, r.tables.Interrogations)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list interrogations: %w", err)
	}
	defer rows.Close()

	list := make([]models.Interrogation, 0)
	for rows.Next() {
		it, err := scanInterrogation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interrogation: %w", err)
		}
		list = append(list, *it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interrogations: %w", err)
	}

	return list, nil
}

// Update writes the mutable checkpoint fields
func (r *PostgresInterrogationRepository) Update(ctx context.Context, it *models.Interrogation) error {
	materials, history, answers, err := encodeInterrogationJSON(it)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, current_layer = $2, summary = $3, materials = $4, history = $5,
			answers = $6, final_document = $7, saved_at = $8, updated_at = $9
		WHERE id = $10
	`, r.tables.Interrogations)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		it.Status,
		it.CurrentLayer,
		it.Summary,
		materials,
		history,
		answers,
		it.FinalDocument,
		it.SavedAt,
		it.UpdatedAt,
		it.ID,
	)
	if err != nil {
		return fmt.Errorf("update interrogation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("interrogation", it.ID)
	}

	return nil
}

// DeleteByWorkspace deletes all sessions of a workspace
func (r *PostgresInterrogationRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE workspace_id = $1`, r.tables.Interrogations)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, workspaceID); err != nil {
		return fmt.Errorf("delete workspace interrogations: %w", err)
	}

	return nil
}

func encodeInterrogationJSON(it *models.Interrogation) (materials, history, answers []byte, err error) {
	if materials, err = json.Marshal(nonNil(it.Materials)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode materials: %w", err)
	}
	if history, err = json.Marshal(nonNil(it.History)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode history: %w", err)
	}
	a := it.Answers
	if a == nil {
		a = map[string]string{}
	}
	if answers, err = json.Marshal(a); err != nil {
		return nil, nil, nil, fmt.Errorf("encode answers: %w", err)
	}
	return materials, history, answers, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func scanInterrogation(row pgx.Row) (*models.Interrogation, error) {
	var it models.Interrogation
	var materials, history, answers []byte
	err := row.Scan(
		&it.ID,
		&it.WorkspaceID,
		&it.CreatedBy,
		&it.Status,
		&it.CurrentLayer,
		&it.Summary,
		&materials,
		&history,
		&answers,
		&it.FinalDocument,
		&it.SavedAt,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(materials, &it.Materials); err != nil {
		return nil, fmt.Errorf("decode materials: %w", err)
	}
	if err := json.Unmarshal(history, &it.History); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if err := json.Unmarshal(answers, &it.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}

	return &it, nil
}
