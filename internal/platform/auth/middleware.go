package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/apierr"
)

// TokenParser verifies a bearer token and returns its principal.
type TokenParser interface {
	Parse(token string) (Principal, error)
}

// BearerMiddleware authenticates requests with an Authorization: Bearer
// header. Requests for which skipper returns true pass through untouched.
func BearerMiddleware(parser TokenParser, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return apierr.Unauthorized("missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return apierr.Unauthorized("invalid authorization format")
			}

			p, err := parser.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				return apierr.Unauthorized("invalid or expired token")
			}

			c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), p)))
			c.Set("account_id", p.AccountID.String())
			return next(c)
		}
	}
}
