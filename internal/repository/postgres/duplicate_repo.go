package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"claimdesk/internal/domain"
	"claimdesk/internal/port"
)

type duplicateRepo struct {
	db *sqlx.DB
}

// NewDuplicateRepo creates a PostgreSQL-backed DuplicateIndex. Atomicity of
// check-and-register rides on the table's primary key: the insert either
// lands (New) or conflicts (Duplicate), regardless of how many documents
// race on the same key.
func NewDuplicateRepo(db *sqlx.DB) port.DuplicateIndex {
	return &duplicateRepo{db: db}
}

func (r *duplicateRepo) CheckAndRegister(ctx context.Context, key domain.DuplicateKey) (domain.DuplicateStatus, error) {
	var amount *decimal.Decimal
	if key.ClaimAmount != nil {
		amount = &key.ClaimAmount.Value
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO duplicate_keys (invoice_number, event_date, claim_amount, registered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (invoice_number, event_date) DO NOTHING`,
		domain.NormalizeIdentifier(key.InvoiceNumber),
		key.EventDate.Format("2006-01-02"),
		amount,
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("duplicateRepo.CheckAndRegister: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("duplicateRepo.CheckAndRegister: %w", err)
	}
	if n == 0 {
		return domain.DuplicateStatusDuplicate, nil
	}
	return domain.DuplicateStatusNew, nil
}
