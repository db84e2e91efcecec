package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns patients, optionally filtering by a case-insensitive
	// name substring.
	List(ctx context.Context, nameQuery string, limit, offset int) ([]*Patient, int, error)
}
