package port

import (
	"context"

	"claimdesk/internal/domain"
)

// DuplicateIndex is the shared lookup of previously registered claim keys.
// CheckAndRegister must be atomic relative to concurrent documents sharing
// the same key: for any key, exactly one caller ever observes New.
type DuplicateIndex interface {
	CheckAndRegister(ctx context.Context, key domain.DuplicateKey) (domain.DuplicateStatus, error)
}
