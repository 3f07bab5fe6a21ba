package middleware

import (
	"fmt"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

// RBAC restricts a route group to the given roles. It reads the role Auth
// stored on the context; a request that never went through Auth is treated
// as unauthenticated rather than forbidden.
func RBAC(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(KeyRole).(string)
			if role == "" {
				return domain.ErrNotAuthenticated
			}
			if !slices.Contains(roles, role) {
				return fmt.Errorf("%s %s as %s: %w", c.Request().Method, c.Path(), role, domain.ErrForbidden)
			}
			return next(c)
		}
	}
}
