package treatment

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/apierr"
	"github.com/clinic/clinic/pkg/money"
)

var (
	ErrInvalidPrice    = apierr.Validation("Price must be a positive number")
	ErrInvalidQuantity = apierr.Validation("Quantity must be a positive number")
	ErrTotalTooLarge   = apierr.Validation("Total price exceeds the maximum amount")

	ErrVisitTotalTooLarge = apierr.Validation("Visit total exceeds the maximum amount")
)

// Treatment is a billable line item on a visit. TotalPrice is always
// Price * Quantity.
type Treatment struct {
	ID          uuid.UUID `json:"id"`
	VisitID     uuid.UUID `json:"visitId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	TotalPrice  float64   `json:"totalPrice"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTreatment builds a treatment and computes its total. It fails when the
// total would not fit the stored amount.
func NewTreatment(visitID uuid.UUID, name, description string, price float64, quantity int) (*Treatment, error) {
	t := &Treatment{
		VisitID:     visitID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Price:       money.Round(price),
		Quantity:    quantity,
	}
	if err := t.computeTotal(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Treatment) computeTotal() error {
	total := t.Price * float64(t.Quantity)
	if !money.Fits(total) {
		return ErrTotalTooLarge
	}
	t.TotalPrice = money.Round(total)
	return nil
}

// Change is a validated partial update. Nil fields keep the stored value.
type Change struct {
	Name        *string
	Description *string
	Price       *float64
	Quantity    *int
}

// Apply merges c into t and recomputes the total from whichever factors
// were not supplied. t is left unchanged when the new total does not fit.
func (t *Treatment) Apply(c Change) error {
	next := *t
	if c.Name != nil {
		next.Name = strings.TrimSpace(*c.Name)
	}
	if c.Description != nil {
		next.Description = strings.TrimSpace(*c.Description)
	}
	if c.Price != nil {
		next.Price = money.Round(*c.Price)
	}
	if c.Quantity != nil {
		next.Quantity = *c.Quantity
	}
	if err := next.computeTotal(); err != nil {
		return err
	}
	*t = next
	return nil
}

type CreateRequest struct {
	VisitID     string          `json:"visitId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Quantity    json.RawMessage `json:"quantity"`
}

type UpdateRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       json.RawMessage `json:"price"`
	Quantity    json.RawMessage `json:"quantity"`
}

// Change validates the request. A blank name is ignored.
func (r UpdateRequest) Change() (Change, error) {
	var c Change
	if strings.TrimSpace(r.Name) != "" {
		c.Name = &r.Name
	}
	c.Description = r.Description
	if present(r.Price) {
		p, err := ParsePrice(r.Price)
		if err != nil {
			return Change{}, err
		}
		c.Price = &p
	}
	if present(r.Quantity) {
		q, err := ParseQuantity(r.Quantity)
		if err != nil {
			return Change{}, err
		}
		c.Quantity = &q
	}
	return c, nil
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null")) && !bytes.Equal(raw, []byte(`""`))
}

// numeric decodes a JSON number or a string holding one.
func numeric(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	var s string
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
	} else {
		s = string(raw)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParsePrice accepts a finite, non-negative number no larger than
// money.MaxAmount.
func ParsePrice(raw json.RawMessage) (float64, error) {
	f, ok := numeric(raw)
	if !ok || !money.Fits(f) {
		return 0, ErrInvalidPrice
	}
	return money.Round(f), nil
}

// ParseQuantity accepts a whole number of at least one.
func ParseQuantity(raw json.RawMessage) (int, error) {
	f, ok := numeric(raw)
	if !ok || f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, ErrInvalidQuantity
	}
	return int(f), nil
}
