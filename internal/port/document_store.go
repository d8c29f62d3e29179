package port

import (
	"context"

	"claimrisk/internal/domain"
)

// DocumentStore stages uploaded documents for the duration of one request.
// Every Put must get a unique key so concurrent requests never collide.
type DocumentStore interface {
	Put(ctx context.Context, doc domain.ClaimDocument) (*domain.StoredDocument, error)
	Read(ctx context.Context, stored *domain.StoredDocument) ([]byte, error)
	Delete(ctx context.Context, stored *domain.StoredDocument) error
}
