package treatment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("treatment not found")

type TreatmentRepository interface {
	Create(ctx context.Context, t *Treatment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error)
	Update(ctx context.Context, t *Treatment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByVisit returns the visit's treatments, newest first.
	ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Treatment, error)
	// SumByVisit returns the sum of total prices on the visit.
	SumByVisit(ctx context.Context, visitID uuid.UUID) (float64, error)
}
