package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	// ListByUser returns the user's prescriptions ordered by start date,
	// newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Prescription, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
