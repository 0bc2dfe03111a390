package visit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("visit not found")
	// ErrSlotTaken is returned when the doctor already has an open visit at
	// the same instant.
	ErrSlotTaken = errors.New("doctor slot already booked")
	// ErrParticipantMissing is returned when a referenced account vanished
	// between lookup and insert.
	ErrParticipantMissing = errors.New("patient or doctor missing")
)

// Row is the bare visit record used while holding its lock.
type Row struct {
	ID          uuid.UUID
	PatientID   uuid.UUID
	DoctorID    uuid.UUID
	ScheduledAt time.Time
	Status      string
	Notes       string
	Symptoms    string
	Diagnosis   string
	TotalAmount float64
}

type VisitRepository interface {
	Create(ctx context.Context, row *Row) (createdAt time.Time, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	// Search applies the id and status filters and orders by date descending.
	Search(ctx context.Context, f Filter) ([]*Visit, error)
	HasOpenVisitAt(ctx context.Context, doctorID uuid.UUID, at time.Time) (bool, error)
	// LockForUpdate locks the visit row until the surrounding transaction ends.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Row, error)
	// UpdateDetails writes status, notes, symptoms and diagnosis.
	UpdateDetails(ctx context.Context, row *Row) error
	SetTotalAmount(ctx context.Context, id uuid.UUID, amount float64) error
}
