package treatment

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/visit"
	"github.com/clinic/clinic/internal/platform/apierr"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/money"
)

// VisitLedger is the part of the visit store treatments write through.
type VisitLedger interface {
	GetByID(ctx context.Context, id uuid.UUID) (*visit.Visit, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*visit.Row, error)
	SetTotalAmount(ctx context.Context, id uuid.UUID, amount float64) error
}

type Service struct {
	treatments TreatmentRepository
	visits     VisitLedger
	tx         db.Transactor
}

func NewService(treatments TreatmentRepository, visits VisitLedger, tx db.Transactor) *Service {
	return &Service{treatments: treatments, visits: visits, tx: tx}
}

// lockVisit locks the parent visit and checks the caller is its doctor.
func (s *Service) lockVisit(ctx context.Context, p auth.Principal, visitID uuid.UUID) error {
	row, err := s.visits.LockForUpdate(ctx, visitID)
	if errors.Is(err, visit.ErrNotFound) {
		return apierr.NotFound("Visit not found")
	}
	if err != nil {
		return err
	}
	if !p.Is(auth.RoleDoctor) || row.DoctorID != p.AccountID {
		return apierr.Forbidden("Only the visit's doctor can change its treatments")
	}
	return nil
}

// recompute stores the sum of the visit's treatment totals on the visit.
// Callers must hold the visit lock.
func (s *Service) recompute(ctx context.Context, visitID uuid.UUID) (float64, error) {
	total, err := s.treatments.SumByVisit(ctx, visitID)
	if err != nil {
		return 0, err
	}
	if !money.Fits(total) {
		return 0, ErrVisitTotalTooLarge
	}
	total = money.Round(total)
	if err := s.visits.SetTotalAmount(ctx, visitID, total); err != nil {
		return 0, apierr.FromStore(err)
	}
	return total, nil
}

// Add validates req, stores the treatment and updates the visit total in one
// transaction.
func (s *Service) Add(ctx context.Context, p auth.Principal, req CreateRequest) (*Treatment, float64, error) {
	if strings.TrimSpace(req.VisitID) == "" || strings.TrimSpace(req.Name) == "" || !present(req.Price) {
		return nil, 0, apierr.Validation("All required fields must be provided")
	}
	price, err := ParsePrice(req.Price)
	if err != nil {
		return nil, 0, err
	}
	quantity := 1
	if present(req.Quantity) {
		if quantity, err = ParseQuantity(req.Quantity); err != nil {
			return nil, 0, err
		}
	}
	visitID, err := uuid.Parse(strings.TrimSpace(req.VisitID))
	if err != nil {
		return nil, 0, apierr.Validation("Invalid visitId")
	}

	t, err := NewTreatment(visitID, req.Name, req.Description, price, quantity)
	if err != nil {
		return nil, 0, err
	}
	var total float64
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.lockVisit(ctx, p, visitID); err != nil {
			return err
		}
		if err := s.treatments.Create(ctx, t); err != nil {
			return apierr.FromStore(err)
		}
		total, err = s.recompute(ctx, visitID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return t, total, nil
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	t, err := s.treatments.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apierr.NotFound("Treatment not found")
	}
	return t, err
}

// Update applies req to the stored treatment. Price and quantity fall back
// to the values read under the visit lock.
func (s *Service) Update(ctx context.Context, p auth.Principal, id uuid.UUID, req UpdateRequest) (*Treatment, float64, error) {
	change, err := req.Change()
	if err != nil {
		return nil, 0, err
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	var (
		t     *Treatment
		total float64
	)
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.lockVisit(ctx, p, current.VisitID); err != nil {
			return err
		}
		// Re-read now that concurrent writers on this visit are excluded.
		if t, err = s.find(ctx, id); err != nil {
			return err
		}
		if err := t.Apply(change); err != nil {
			return err
		}
		if err := s.treatments.Update(ctx, t); err != nil {
			if errors.Is(err, ErrNotFound) {
				return apierr.NotFound("Treatment not found")
			}
			return apierr.FromStore(err)
		}
		total, err = s.recompute(ctx, t.VisitID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return t, total, nil
}

// Delete removes the treatment and returns the visit's new total.
func (s *Service) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) (float64, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return 0, err
	}

	var total float64
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.lockVisit(ctx, p, current.VisitID); err != nil {
			return err
		}
		if err := s.treatments.Delete(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return apierr.NotFound("Treatment not found")
			}
			return err
		}
		total, err = s.recompute(ctx, current.VisitID)
		return err
	})
	return total, err
}

func (s *Service) authorizeRead(ctx context.Context, p auth.Principal, visitID uuid.UUID) error {
	v, err := s.visits.GetByID(ctx, visitID)
	if errors.Is(err, visit.ErrNotFound) {
		return apierr.NotFound("Visit not found")
	}
	if err != nil {
		return err
	}
	if !visit.CanAccess(p, v.Patient.ID, v.Doctor.ID) {
		return apierr.Forbidden("Not allowed to access this visit")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*Treatment, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, p, t.VisitID); err != nil {
		return nil, err
	}
	return t, nil
}

// ListByVisit returns the visit's treatments, newest first.
func (s *Service) ListByVisit(ctx context.Context, p auth.Principal, rawVisitID string) ([]*Treatment, error) {
	if strings.TrimSpace(rawVisitID) == "" {
		return nil, apierr.Validation("Visit ID is required")
	}
	visitID, err := uuid.Parse(strings.TrimSpace(rawVisitID))
	if err != nil {
		return nil, apierr.Validation("Invalid visitId")
	}
	if err := s.authorizeRead(ctx, p, visitID); err != nil {
		return nil, err
	}
	items, err := s.treatments.ListByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Treatment{}
	}
	return items, nil
}
