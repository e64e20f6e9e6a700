package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the post-login landing payload. The real storefront
// renders this client-side; the server exposes a placeholder the shell can
// hydrate from.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

type dashboardResponse struct {
	Message  string   `json:"message"`
	Sections []string `json:"sections"`
}

// Dashboard returns the placeholder dashboard for the authenticated user.
//
// @Summary      Dashboard placeholder
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  map[string]string
// @Router       /dashboard [get]
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboardResponse{
		Message:  "Welcome back, " + user.Name,
		Sections: []string{"orders", "wishlist", "account"},
	})
}
