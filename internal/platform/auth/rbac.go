package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/apierr"
)

// Account roles.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleFinance = "finance"
)

// IsRole reports whether r is a known account role.
func IsRole(r string) bool {
	switch r {
	case RolePatient, RoleDoctor, RoleFinance:
		return true
	}
	return false
}

// Principal is the authenticated caller of a request.
type Principal struct {
	AccountID uuid.UUID
	Role      string
}

func (p Principal) Is(role string) bool { return p.Role == role }

type principalKey struct{}

// WithPrincipal stores p on ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller stored by the bearer middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// CurrentPrincipal returns the caller of c, or a 401 when the request was not
// authenticated.
func CurrentPrincipal(c echo.Context) (Principal, error) {
	p, ok := PrincipalFromContext(c.Request().Context())
	if !ok {
		return Principal{}, apierr.Unauthorized("Authentication required")
	}
	return p, nil
}

// RequireRole returns middleware that checks the caller has one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c.Request().Context())
			if !ok {
				return apierr.Unauthorized("Authentication required")
			}
			for _, r := range roles {
				if p.Role == r {
					return next(c)
				}
			}
			return apierr.Forbidden("required role: " + strings.Join(roles, " or "))
		}
	}
}
