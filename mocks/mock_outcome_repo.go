package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"claimdesk/internal/domain"
)

// MockOutcomeRepo is a mock implementation of port.OutcomeRepository.
type MockOutcomeRepo struct {
	mock.Mock
}

func (m *MockOutcomeRepo) Save(ctx context.Context, rec *domain.OutcomeRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockOutcomeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.OutcomeRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutcomeRecord), args.Error(1)
}

func (m *MockOutcomeRepo) List(ctx context.Context, limit, offset int) ([]domain.OutcomeRecord, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutcomeRecord), args.Error(1)
}
