package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/dently/clinic/internal/platform/apperr"
)

// Patient is a practice patient record.
type Patient struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (p *Patient) Validate() error {
	if p.FirstName == "" {
		return apperr.Validation("first_name", "is required")
	}
	if p.LastName == "" {
		return apperr.Validation("last_name", "is required")
	}
	return nil
}
