package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/auth-system/internal/api/handler"
	"github.com/storefront/auth-system/internal/core/ports"
)

// Session resolves the session cookie to a user and injects it into context.
// Requests without a valid, unexpired session are rejected with 401.
func Session(authService ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(handler.SessionCookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			user, err := authService.GetProfile(c.Request().Context(), cookie.Value)
			if err != nil {
				return err
			}

			c.Set(handler.UserContextKey, user)
			return next(c)
		}
	}
}
