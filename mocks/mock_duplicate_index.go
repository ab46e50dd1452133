package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimdesk/internal/domain"
)

// MockDuplicateIndex is a mock implementation of port.DuplicateIndex.
type MockDuplicateIndex struct {
	mock.Mock
}

func (m *MockDuplicateIndex) CheckAndRegister(ctx context.Context, key domain.DuplicateKey) (domain.DuplicateStatus, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.DuplicateStatus), args.Error(1)
}
