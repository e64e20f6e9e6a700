package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/auth-system/internal/core/domain"
)

// UserContextKey is where the session middleware stores the resolved user.
const UserContextKey = "user"

// currentUser extracts the user injected by the session middleware. Presence
// proves the middleware ran; a guarded handler reached without it is a
// routing mistake, reported as 401 rather than a panic.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(UserContextKey).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return user, nil
}
