package middleware

import (
	"fmt"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
)

// RBAC admits operators whose token carries one of roles. Denials surface as
// domain.ErrForbidden and are rendered by the API error handler.
func RBAC(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" || !slices.Contains(roles, role) {
				return fmt.Errorf("role %q on %s %s: %w",
					role, c.Request().Method, c.Path(), domain.ErrForbidden)
			}
			return next(c)
		}
	}
}
