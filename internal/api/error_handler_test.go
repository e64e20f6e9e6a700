package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/auth-system/internal/core/domain"
)

func newErrorContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestResolveError_DomainMappings(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid email", domain.ErrInvalidEmail, http.StatusBadRequest},
		{"weak password", domain.ErrWeakPassword, http.StatusBadRequest},
		{"wrong code", domain.ErrOTPInvalid, http.StatusBadRequest},
		{"no pending otp", domain.ErrNoPendingOTP, http.StatusBadRequest},
		{"expired otp", domain.ErrOTPExpired, http.StatusGone},
		{"too many attempts", domain.ErrTooManyAttempts, http.StatusTooManyRequests},
		{"user exists", domain.ErrUserExists, http.StatusConflict},
		{"email not verified", domain.ErrEmailNotVerified, http.StatusForbidden},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"delivery failed", domain.ErrDeliveryFailed, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newErrorContext()
			code, _ := resolveError(tc.err, zerolog.Nop(), c)
			if code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, code)
			}
		})
	}
}

func TestResolveError_CooldownSetsRetryAfter(t *testing.T) {
	c, rec := newErrorContext()

	code, msg := resolveError(&domain.CooldownError{Remaining: 42 * time.Second}, zerolog.Nop(), c)
	if code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if got := rec.Header().Get("Retry-After"); got != "42" {
		t.Fatalf("expected Retry-After 42, got %q", got)
	}
	if msg == "" {
		t.Fatalf("expected a message with the remaining wait")
	}
}

func TestResolveError_UnexpectedErrorIsOpaque(t *testing.T) {
	c, _ := newErrorContext()

	code, msg := resolveError(errors.New("pg: connection refused"), zerolog.Nop(), c)
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if msg != "internal server error" {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}

func TestResolveError_EchoHTTPError(t *testing.T) {
	c, _ := newErrorContext()

	code, msg := resolveError(echo.NewHTTPError(http.StatusNotFound, "not found"), zerolog.Nop(), c)
	if code != http.StatusNotFound || msg != "not found" {
		t.Fatalf("unexpected mapping: %d %q", code, msg)
	}
}
