package calculation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// ReplaceForUser stores c as the user's single live calculation:
	// replace-if-exists else insert, keyed by owner. Concurrent submissions
	// for the same user race last-write-wins at the storage layer; no
	// additional locking is layered on top.
	ReplaceForUser(ctx context.Context, c *Calculation) error
	GetByUser(ctx context.Context, userID uuid.UUID) (*Calculation, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
