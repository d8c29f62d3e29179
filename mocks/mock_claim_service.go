package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimrisk/internal/domain"
	"claimrisk/internal/service"
)

// MockClaimService is a mock implementation of service.ClaimService.
type MockClaimService struct {
	mock.Mock
}

func (m *MockClaimService) Analyze(ctx context.Context, input service.AnalyzeInput) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}
