package medicine

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Medicine, error)
	GetByName(ctx context.Context, name string) (*Medicine, error)
	Search(ctx context.Context, q *SearchQuery) ([]*Medicine, error)
}
