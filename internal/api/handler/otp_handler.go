package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/auth-system/internal/api/metrics"
	"github.com/storefront/auth-system/internal/core/ports"
)

type OTPHandler struct {
	otpService ports.OTPService
}

func NewOTPHandler(otpService ports.OTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

type requestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// RequestOTP issues a verification code and emails it.
//
// @Summary      Request a verification code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      requestOTPRequest  true  "Email to verify"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /request-otp [post]
func (h *OTPHandler) RequestOTP(c echo.Context) error {
	var req requestOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.otpService.RequestOTP(c.Request().Context(), req.Email)
	metrics.OTPRequestsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "verification code sent"})
}

// VerifyOTP checks a submitted verification code.
//
// @Summary      Verify a code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOTPRequest  true  "Email and code"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      410   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /verify-otp [post]
func (h *OTPHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.otpService.VerifyOTP(c.Request().Context(), req.Email, req.OTP)
	metrics.OTPVerificationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "email verified"})
}
