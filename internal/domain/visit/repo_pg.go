package visit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

const openSlotIndex = "visit_doctor_open_slot_uniq"

type visitRepoPG struct{ pool *pgxpool.Pool }

func NewVisitRepoPG(pool *pgxpool.Pool) VisitRepository {
	return &visitRepoPG{pool: pool}
}

const visitSelect = `SELECT v.id, v.scheduled_at, v.time_of_day, v.status, v.notes,
	v.symptoms, v.diagnosis, v.total_amount, v.created_at, v.updated_at,
	p.id, p.name, p.email, p.phone,
	d.id, d.name, d.email, d.specialization
FROM visit v
JOIN account p ON p.id = v.patient_id
JOIN account d ON d.id = v.doctor_id`

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(&v.ID, &v.ScheduledAt, &v.TimeOfDay, &v.Status, &v.Notes,
		&v.Symptoms, &v.Diagnosis, &v.TotalAmount, &v.CreatedAt, &v.UpdatedAt,
		&v.Patient.ID, &v.Patient.Name, &v.Patient.Email, &v.Patient.Phone,
		&v.Doctor.ID, &v.Doctor.Name, &v.Doctor.Email, &v.Doctor.Specialization)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &v, err
}

func (r *visitRepoPG) Create(ctx context.Context, row *Row) (time.Time, error) {
	row.ID = uuid.New()
	var createdAt time.Time
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO visit (id, patient_id, doctor_id, scheduled_at, time_of_day, status,
			notes, symptoms, diagnosis, total_amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at`,
		row.ID, row.PatientID, row.DoctorID, row.ScheduledAt, TimeOfDay(row.ScheduledAt),
		row.Status, row.Notes, row.Symptoms, row.Diagnosis, row.TotalAmount,
	).Scan(&createdAt)
	switch {
	case db.IsUniqueViolation(err, openSlotIndex):
		return time.Time{}, ErrSlotTaken
	case db.IsForeignKeyViolation(err):
		return time.Time{}, ErrParticipantMissing
	}
	return createdAt, err
}

func (r *visitRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return scanVisit(db.Conn(ctx, r.pool).QueryRow(ctx, visitSelect+` WHERE v.id = $1`, id))
}

func (r *visitRepoPG) Search(ctx context.Context, f Filter) ([]*Visit, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.VisitID != nil {
		add("v.id = $%d", *f.VisitID)
	}
	if f.PatientID != nil {
		add("v.patient_id = $%d", *f.PatientID)
	}
	if f.DoctorID != nil {
		add("v.doctor_id = $%d", *f.DoctorID)
	}
	if f.Status != "" {
		add("v.status = $%d", f.Status)
	}

	q := visitSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY v.scheduled_at DESC, v.id"

	rows, err := db.Conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Visit{}
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (r *visitRepoPG) HasOpenVisitAt(ctx context.Context, doctorID uuid.UUID, at time.Time) (bool, error) {
	var exists bool
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM visit
			WHERE doctor_id = $1 AND scheduled_at = $2
			  AND status IN ('scheduled', 'in-progress'))`,
		doctorID, at).Scan(&exists)
	return exists, err
}

func (r *visitRepoPG) LockForUpdate(ctx context.Context, id uuid.UUID) (*Row, error) {
	var row Row
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, scheduled_at, status, notes, symptoms, diagnosis, total_amount
		FROM visit WHERE id = $1
		FOR UPDATE`, id,
	).Scan(&row.ID, &row.PatientID, &row.DoctorID, &row.ScheduledAt, &row.Status,
		&row.Notes, &row.Symptoms, &row.Diagnosis, &row.TotalAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *visitRepoPG) UpdateDetails(ctx context.Context, row *Row) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE visit SET status=$2, notes=$3, symptoms=$4, diagnosis=$5, updated_at=NOW()
		WHERE id = $1`,
		row.ID, row.Status, row.Notes, row.Symptoms, row.Diagnosis)
	if db.IsUniqueViolation(err, openSlotIndex) {
		return ErrSlotTaken
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *visitRepoPG) SetTotalAmount(ctx context.Context, id uuid.UUID, amount float64) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE visit SET total_amount=$2, updated_at=NOW() WHERE id = $1`, id, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
