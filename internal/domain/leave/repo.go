package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Submit inserts the request after re-checking the active-overlap
	// guard under transactional isolation. Returns a CONFLICT error when
	// another active request of the same user intersects the date range.
	Submit(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	Update(ctx context.Context, r *Request) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Request, int, error)
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Request, int, error)
	// FindActiveOverlapping returns the first active-status request of the
	// user whose inclusive date range intersects [start, end].
	FindActiveOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) (*Request, error)
	// ListBlockingForUser returns APPROVED and ALTERNATIVE_ACCEPTED
	// requests of the user, for the appointment conflict validator.
	ListBlockingForUser(ctx context.Context, userID uuid.UUID) ([]*Request, error)
}
