package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths bypass bearer authentication.
var publicPaths = map[string]bool{
	"/health":        true,
	"/health/db":     true,
	"/auth/register": true,
	"/auth/login":    true,
}

// AuthSkipper returns true for requests whose route is public.
func AuthSkipper(c echo.Context) bool {
	return IsPublicPath(c.Path())
}

// IsPublicPath reports whether path is served without a token.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
