package treatment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type treatmentRepoPG struct{ pool *pgxpool.Pool }

func NewTreatmentRepoPG(pool *pgxpool.Pool) TreatmentRepository {
	return &treatmentRepoPG{pool: pool}
}

const treatmentCols = `id, visit_id, name, description, price, quantity, total_price, created_at, updated_at`

func scanTreatment(row pgx.Row) (*Treatment, error) {
	var t Treatment
	err := row.Scan(&t.ID, &t.VisitID, &t.Name, &t.Description, &t.Price,
		&t.Quantity, &t.TotalPrice, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

func (r *treatmentRepoPG) Create(ctx context.Context, t *Treatment) error {
	t.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO treatment (id, visit_id, name, description, price, quantity, total_price)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		t.ID, t.VisitID, t.Name, t.Description, t.Price, t.Quantity, t.TotalPrice,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *treatmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	return scanTreatment(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+treatmentCols+` FROM treatment WHERE id = $1`, id))
}

func (r *treatmentRepoPG) Update(ctx context.Context, t *Treatment) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE treatment SET name=$2, description=$3, price=$4, quantity=$5, total_price=$6, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		t.ID, t.Name, t.Description, t.Price, t.Quantity, t.TotalPrice,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *treatmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM treatment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *treatmentRepoPG) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Treatment, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+treatmentCols+` FROM treatment WHERE visit_id = $1 ORDER BY created_at DESC, id`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Treatment{}
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *treatmentRepoPG) SumByVisit(ctx context.Context, visitID uuid.UUID) (float64, error) {
	var total float64
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COALESCE(SUM(total_price), 0)::float8 FROM treatment WHERE visit_id = $1`, visitID).Scan(&total)
	return total, err
}
