package apierr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/db"
)

// Bind decodes the request body into v. Malformed input becomes a 400; an
// oversized body keeps its 413.
func Bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return he
		}
		return Validation("Invalid request body")
	}
	return nil
}

// FromStore maps constraint violations raised by PostgreSQL onto the
// taxonomy. Any other error is returned unchanged.
func FromStore(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := db.CheckViolation(err); ok {
		return Validation("Validation failed", constraint)
	}
	if db.IsNumericOverflow(err) {
		return Validation("Validation failed", "numeric value out of range")
	}
	if db.IsUniqueViolation(err) {
		return Conflict("Duplicate record")
	}
	return err
}
