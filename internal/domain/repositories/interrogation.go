package repositories

import (
	"context"

	"thecrew/internal/domain/models"
)

// InterrogationRepository persists briefing sessions
type InterrogationRepository interface {
	Create(ctx context.Context, interrogation *models.Interrogation) error
	GetByID(ctx context.Context, id string) (*models.Interrogation, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Interrogation, error)

	// Update overwrites status, layer, summary, materials, history, answers and document
	Update(ctx context.Context, interrogation *models.Interrogation) error

	DeleteByWorkspace(ctx context.Context, workspaceID string) error
}
