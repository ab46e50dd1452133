package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"claimdesk/internal/domain"
	"claimdesk/internal/port"
)

type outcomeRepo struct {
	db *sqlx.DB
}

// NewOutcomeRepo creates a new PostgreSQL-backed OutcomeRepository.
func NewOutcomeRepo(db *sqlx.DB) port.OutcomeRepository {
	return &outcomeRepo{db: db}
}

func (r *outcomeRepo) Save(ctx context.Context, rec *domain.OutcomeRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now().UTC()

	query := `INSERT INTO outcomes (
		id, disposition, extraction_method, overall_confidence,
		duplicate, review_flag, rejection_reason,
		fields, source_metadata, ocr_quality, created_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7,
		$8, $9, $10, $11
	)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Disposition, rec.Method, rec.Overall,
		rec.Duplicate, rec.ReviewFlag, rec.Rejection,
		rec.Fields, rec.SourceMetadata, rec.OCRQuality, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("outcomeRepo.Save: %w", err)
	}
	return nil
}

func (r *outcomeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.OutcomeRecord, error) {
	var rec domain.OutcomeRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT * FROM outcomes WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("outcomeRepo.GetByID: %w", err)
	}
	return &rec, nil
}

func (r *outcomeRepo) List(ctx context.Context, limit, offset int) ([]domain.OutcomeRecord, error) {
	var recs []domain.OutcomeRecord
	err := r.db.SelectContext(ctx, &recs,
		`SELECT * FROM outcomes ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("outcomeRepo.List: %w", err)
	}
	return recs, nil
}
