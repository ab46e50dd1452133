// Package dupes provides duplicate-claim detection keyed on the normalized
// (invoice_number, event_date) pair.
package dupes

import (
	"context"
	"sync"

	"claimdesk/internal/domain"
)

// MemoryIndex is a process-local DuplicateIndex. Check-and-register is
// atomic under one mutex, so two concurrent documents sharing a key can
// never both observe New.
type MemoryIndex struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{seen: make(map[string]struct{})}
}

// CheckAndRegister registers the key and reports whether it was already
// known. The first caller for a key gets New; every later caller gets
// Duplicate.
func (m *MemoryIndex) CheckAndRegister(_ context.Context, key domain.DuplicateKey) (domain.DuplicateStatus, error) {
	k := key.Normalized()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[k]; ok {
		return domain.DuplicateStatusDuplicate, nil
	}
	m.seen[k] = struct{}{}
	return domain.DuplicateStatusNew, nil
}

// Len reports the number of registered keys.
func (m *MemoryIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}
