package middleware

import (
	"github.com/labstack/echo/v4"

	apperrors "workshop/internal/errors"
	"workshop/internal/model"
)

// RequireRole aborts with Forbidden unless the live role of the caller is one
// of roles. It must run after Authenticate.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := Identity(c)
			if err != nil {
				return err
			}
			if !allowed[identity.Role] {
				return apperrors.Forbidden("insufficient role")
			}
			return next(c)
		}
	}
}
