package dupes

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/domain"
)

func key(invoice string, year, month, day int) domain.DuplicateKey {
	return domain.DuplicateKey{
		InvoiceNumber: invoice,
		EventDate:     time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
	}
}

func TestCheckAndRegister_NewThenDuplicate(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	status, err := idx.CheckAndRegister(ctx, key("INV-001", 2024, 3, 15))
	require.NoError(t, err)
	assert.Equal(t, domain.DuplicateStatusNew, status)

	status, err = idx.CheckAndRegister(ctx, key("INV-001", 2024, 3, 15))
	require.NoError(t, err)
	assert.Equal(t, domain.DuplicateStatusDuplicate, status)
}

func TestCheckAndRegister_KeyNormalization(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	_, err := idx.CheckAndRegister(ctx, key("inv-001", 2024, 3, 15))
	require.NoError(t, err)

	// case and whitespace differences collapse onto the same key
	status, err := idx.CheckAndRegister(ctx, key("  INV-001 ", 2024, 3, 15))
	require.NoError(t, err)
	assert.Equal(t, domain.DuplicateStatusDuplicate, status)
}

func TestCheckAndRegister_DistinctKeys(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	for _, k := range []domain.DuplicateKey{
		key("INV-001", 2024, 3, 15),
		key("INV-002", 2024, 3, 15),
		key("INV-001", 2024, 3, 16),
	} {
		status, err := idx.CheckAndRegister(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, domain.DuplicateStatusNew, status)
	}
	assert.Equal(t, 3, idx.Len())
}

func TestCheckAndRegister_ConcurrentSingleWinner(t *testing.T) {
	idx := NewMemoryIndex()
	k := key("INV-RACE", 2024, 3, 15)

	const workers = 32
	var wg sync.WaitGroup
	statuses := make([]domain.DuplicateStatus, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i], errs[i] = idx.CheckAndRegister(context.Background(), k)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	news := 0
	for _, s := range statuses {
		if s == domain.DuplicateStatusNew {
			news++
		}
	}
	assert.Equal(t, 1, news, "exactly one concurrent caller may observe New")
}
