package visit

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/account"
	"github.com/clinic/clinic/internal/platform/apierr"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/money"
)

const msgSlotTaken = "Doctor has another appointment at this time"

// AccountLookup resolves the accounts a visit refers to.
type AccountLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

type Service struct {
	visits   VisitRepository
	accounts AccountLookup
	tx       db.Transactor
}

func NewService(visits VisitRepository, accounts AccountLookup, tx db.Transactor) *Service {
	return &Service{visits: visits, accounts: accounts, tx: tx}
}

// Book creates a scheduled visit for the calling patient.
func (s *Service) Book(ctx context.Context, p auth.Principal, req CreateRequest) (*Visit, error) {
	if strings.TrimSpace(req.PatientID) == "" || strings.TrimSpace(req.DoctorID) == "" || strings.TrimSpace(req.Date) == "" {
		return nil, apierr.Validation("All fields are required")
	}
	patientID, err := uuid.Parse(strings.TrimSpace(req.PatientID))
	if err != nil {
		return nil, apierr.Validation("Invalid patientId")
	}
	doctorID, err := uuid.Parse(strings.TrimSpace(req.DoctorID))
	if err != nil {
		return nil, apierr.Validation("Invalid doctorId")
	}
	at, err := ParseDate(req.Date)
	if err != nil {
		return nil, apierr.Validation("Invalid date", err.Error())
	}
	if !p.Is(auth.RolePatient) || patientID != p.AccountID {
		return nil, apierr.Forbidden("Patients can only book visits for themselves")
	}

	patient, err := s.lookup(ctx, patientID)
	if err != nil {
		return nil, err
	}
	doctor, err := s.lookup(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsDoctor() {
		return nil, apierr.Validation("Selected user is not a doctor")
	}

	busy, err := s.visits.HasOpenVisitAt(ctx, doctorID, at)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, apierr.Clash(msgSlotTaken)
	}

	row := &Row{PatientID: patientID, DoctorID: doctorID, ScheduledAt: at, Status: StatusScheduled}
	createdAt, err := s.visits.Create(ctx, row)
	switch {
	case errors.Is(err, ErrSlotTaken):
		return nil, apierr.Clash(msgSlotTaken)
	case errors.Is(err, ErrParticipantMissing):
		return nil, apierr.NotFound("Patient or doctor not found")
	case err != nil:
		return nil, apierr.FromStore(err)
	}

	return &Visit{
		ID:          row.ID,
		Patient:     PatientInfo{ID: patient.ID, Name: patient.Name, Email: patient.Email, Phone: patient.Phone},
		Doctor:      DoctorInfo{ID: doctor.ID, Name: doctor.Name, Email: doctor.Email, Specialization: doctor.Specialization},
		ScheduledAt: at,
		TimeOfDay:   TimeOfDay(at),
		Status:      row.Status,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

func (s *Service) lookup(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, account.ErrNotFound) {
		return nil, apierr.NotFound("Patient or doctor not found")
	}
	return a, err
}

// CanAccess reports whether p may see a visit between patientID and doctorID.
func CanAccess(p auth.Principal, patientID, doctorID uuid.UUID) bool {
	switch p.Role {
	case auth.RoleFinance:
		return true
	case auth.RoleDoctor:
		return doctorID == p.AccountID
	case auth.RolePatient:
		return patientID == p.AccountID
	}
	return false
}

func (s *Service) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*Visit, error) {
	v, err := s.visits.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apierr.NotFound("Visit not found")
	}
	if err != nil {
		return nil, err
	}
	if !CanAccess(p, v.Patient.ID, v.Doctor.ID) {
		return nil, apierr.Forbidden("Not allowed to access this visit")
	}
	return v, nil
}

// Scope pins f to the caller: doctors see only their own visits and patients
// only theirs. Asking for someone else's id is refused.
func Scope(p auth.Principal, f *Filter) error {
	self := p.AccountID
	switch p.Role {
	case auth.RoleFinance:
		return nil
	case auth.RoleDoctor:
		if f.DoctorID != nil && *f.DoctorID != self {
			return apierr.Forbidden("Doctors can only list their own visits")
		}
		f.DoctorID = &self
	case auth.RolePatient:
		if f.PatientID != nil && *f.PatientID != self {
			return apierr.Forbidden("Patients can only list their own visits")
		}
		f.PatientID = &self
	default:
		return apierr.Forbidden("Unknown role")
	}
	return nil
}

func (s *Service) List(ctx context.Context, p auth.Principal, f Filter) ([]*Visit, error) {
	if err := Scope(p, &f); err != nil {
		return nil, err
	}
	found, err := s.visits.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]*Visit, 0, len(found))
	for _, v := range found {
		if f.Match(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Update applies the non-empty fields of req.
func (s *Service) Update(ctx context.Context, p auth.Principal, id uuid.UUID, req UpdateRequest) (*Visit, error) {
	return s.Patch(ctx, p, id, req.Patch())
}

// Patch applies patch to the visit while holding its row lock. Only the
// visit's doctor may change it.
func (s *Service) Patch(ctx context.Context, p auth.Principal, id uuid.UUID, patch Patch) (*Visit, error) {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		row, err := s.visits.LockForUpdate(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return apierr.NotFound("Visit not found")
		}
		if err != nil {
			return err
		}
		if !p.Is(auth.RoleDoctor) || row.DoctorID != p.AccountID {
			return apierr.Forbidden("Only the visit's doctor can update it")
		}
		if patch.Empty() {
			return nil
		}
		if err := patch.Apply(row); err != nil {
			return err
		}
		err = s.visits.UpdateDetails(ctx, row)
		if errors.Is(err, ErrSlotTaken) {
			return apierr.Clash(msgSlotTaken)
		}
		return apierr.FromStore(err)
	})
	if err != nil {
		return nil, err
	}
	return s.visits.GetByID(ctx, id)
}

// Summary totals the visits List would return for the same filter.
func (s *Service) Summary(ctx context.Context, p auth.Principal, f Filter) (*Summary, error) {
	visits, err := s.List(ctx, p, f)
	if err != nil {
		return nil, err
	}
	sum := &Summary{ByStatus: map[string]StatusTotal{}}
	for status := range validStatuses {
		sum.ByStatus[status] = StatusTotal{}
	}
	for _, v := range visits {
		st := sum.ByStatus[v.Status]
		st.Count++
		st.TotalAmount = money.Sum(st.TotalAmount, v.TotalAmount)
		sum.ByStatus[v.Status] = st

		sum.Count++
		sum.TotalAmount = money.Sum(sum.TotalAmount, v.TotalAmount)
	}
	return sum, nil
}
