package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/auth-system/internal/api/metrics"
	"github.com/storefront/auth-system/internal/core/domain"
	"github.com/storefront/auth-system/internal/core/ports"
)

// AuthHandler exposes account and session endpoints. The session token
// travels only in the HTTP-only session cookie, never in a body.
type AuthHandler struct {
	authService   ports.AuthService
	secureCookies bool
}

func NewAuthHandler(authService ports.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookies: secureCookies}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

// Signup creates an account for a verified email and opens a session.
//
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, session, err := h.authService.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	metrics.SignupsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	setSessionCookie(c, session, h.secureCookies)
	return c.JSON(http.StatusCreated, userResponse{User: user})
}

// Login authenticates credentials and opens a session.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, session, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	metrics.LoginsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	setSessionCookie(c, session, h.secureCookies)
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// Logout destroys the session. Always succeeds; an absent or unknown cookie
// is not an error.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := sessionToken(c); token != "" {
		if err := h.authService.Logout(c.Request().Context(), token); err != nil {
			return err
		}
	}
	clearSessionCookie(c, h.secureCookies)
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// Profile returns the authenticated user.
//
// @Summary      Get the current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Router       /profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// RefreshToken rotates the session cookie.
//
// @Summary      Refresh the session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /refresh-token [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	token := sessionToken(c)
	session, err := h.authService.RefreshToken(c.Request().Context(), token)
	if err != nil {
		return err
	}

	setSessionCookie(c, session, h.secureCookies)
	return c.JSON(http.StatusOK, messageResponse{Message: "session refreshed"})
}
