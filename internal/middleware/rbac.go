package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RequireRole lets the request through only when the token role is one of roles.
// It must run after JWT.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := UserRole(c)
			if role == "" {
				return deny(c, http.StatusForbidden, "missing role")
			}
			if !slices.Contains(roles, role) {
				return deny(c, http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
