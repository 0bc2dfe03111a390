package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the repositories translate.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	CodeNumericOverflow     = "22003"
)

// PgError unwraps err to a *pgconn.PgError.
func PgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsUniqueViolation reports whether err is a unique violation. When
// constraints are given, the violated constraint must be one of them.
func IsUniqueViolation(err error, constraints ...string) bool {
	return hasCode(err, CodeUniqueViolation, constraints)
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error, constraints ...string) bool {
	return hasCode(err, CodeForeignKeyViolation, constraints)
}

// CheckViolation returns the violated constraint name for check violations.
func CheckViolation(err error) (string, bool) {
	pgErr, ok := PgError(err)
	if !ok || pgErr.Code != CodeCheckViolation {
		return "", false
	}
	return pgErr.ConstraintName, true
}

// IsNumericOverflow reports whether err is a numeric value out of range.
func IsNumericOverflow(err error) bool {
	return hasCode(err, CodeNumericOverflow, nil)
}

func hasCode(err error, code string, constraints []string) bool {
	pgErr, ok := PgError(err)
	if !ok || pgErr.Code != code {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	for _, c := range constraints {
		if pgErr.ConstraintName == c {
			return true
		}
	}
	return false
}
