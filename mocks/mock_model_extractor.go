package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimdesk/internal/domain"
)

// MockModelExtractor is a mock implementation of orchestrator.ModelExtractor.
type MockModelExtractor struct {
	mock.Mock
}

func (m *MockModelExtractor) Extract(ctx context.Context, doc domain.Document) ([]domain.ExtractionCandidate, *domain.ExtractionFailure) {
	args := m.Called(ctx, doc)
	var cands []domain.ExtractionCandidate
	if args.Get(0) != nil {
		cands = args.Get(0).([]domain.ExtractionCandidate)
	}
	var failure *domain.ExtractionFailure
	if args.Get(1) != nil {
		failure = args.Get(1).(*domain.ExtractionFailure)
	}
	return cands, failure
}
