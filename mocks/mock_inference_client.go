package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimdesk/internal/port"
)

// MockInferenceClient is a mock implementation of port.InferenceClient.
type MockInferenceClient struct {
	mock.Mock
}

func (m *MockInferenceClient) Generate(ctx context.Context, req port.InferenceRequest) (*port.InferenceResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.InferenceResponse), args.Error(1)
}
