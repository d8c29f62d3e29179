package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimrisk/internal/domain"
)

// MockDocumentStore is a mock implementation of port.DocumentStore.
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Put(ctx context.Context, doc domain.ClaimDocument) (*domain.StoredDocument, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredDocument), args.Error(1)
}

func (m *MockDocumentStore) Read(ctx context.Context, stored *domain.StoredDocument) ([]byte, error) {
	args := m.Called(ctx, stored)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDocumentStore) Delete(ctx context.Context, stored *domain.StoredDocument) error {
	args := m.Called(ctx, stored)
	return args.Error(0)
}
