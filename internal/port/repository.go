package port

import (
	"context"

	"github.com/google/uuid"

	"claimdesk/internal/domain"
)

// OutcomeRepository persists extraction outcomes. Stored records are never
// mutated after insert.
type OutcomeRepository interface {
	Save(ctx context.Context, rec *domain.OutcomeRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.OutcomeRecord, error)
	List(ctx context.Context, limit, offset int) ([]domain.OutcomeRecord, error)
}
