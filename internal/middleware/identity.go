// Package middleware holds the request pipeline pieces that sit between
// echo's JWT guard and the handlers: live identity, role checks and rate
// limiting.
package middleware

import (
	"github.com/labstack/echo/v4"

	"workshop/internal/auth"
	apperrors "workshop/internal/errors"
	"workshop/internal/service"
)

const (
	// ClaimsKey is where the JWT guard leaves the verified claims.
	ClaimsKey   = "user"
	identityKey = "identity"
)

// Authenticate resolves the verified token claims into the caller's live
// identity and stores it on the context.
func Authenticate(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ClaimsKey).(*auth.Claims)
			if !ok {
				return apperrors.Unauthorized("invalid or missing token")
			}
			identity, err := authService.Authorize(c.Request().Context(), claims)
			if err != nil {
				return err
			}
			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// Identity returns the caller set by Authenticate.
func Identity(c echo.Context) (auth.Identity, error) {
	identity, ok := c.Get(identityKey).(auth.Identity)
	if !ok {
		return auth.Identity{}, apperrors.Unauthorized("invalid or missing token")
	}
	return identity, nil
}

// Claims returns the verified token claims of the request.
func Claims(c echo.Context) (*auth.Claims, error) {
	claims, ok := c.Get(ClaimsKey).(*auth.Claims)
	if !ok {
		return nil, apperrors.Unauthorized("invalid or missing token")
	}
	return claims, nil
}
