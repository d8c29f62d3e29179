package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimrisk/internal/port"
)

// MockModelClient is a mock implementation of port.ModelClient.
type MockModelClient struct {
	mock.Mock
}

func (m *MockModelClient) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GenerateOutput), args.Error(1)
}

func (m *MockModelClient) Model() string {
	args := m.Called()
	return args.String(0)
}
