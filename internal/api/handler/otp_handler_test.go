package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/storefront/auth-system/internal/core/domain"
)

type stubOTPService struct {
	requestFn func(ctx context.Context, email string) error
	verifyFn  func(ctx context.Context, email, code string) error
}

func (s *stubOTPService) RequestOTP(ctx context.Context, email string) error {
	return s.requestFn(ctx, email)
}

func (s *stubOTPService) VerifyOTP(ctx context.Context, email, code string) error {
	return s.verifyFn(ctx, email, code)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestOTPHandler_RequestOTP_Success(t *testing.T) {
	stub := &stubOTPService{
		requestFn: func(_ context.Context, email string) error {
			if email != "a@x.com" {
				t.Fatalf("unexpected email: %q", email)
			}
			return nil
		},
	}
	h := NewOTPHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/request-otp", `{"email":"a@x.com"}`)
	if err := h.RequestOTP(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOTPHandler_RequestOTP_InvalidPayload(t *testing.T) {
	h := NewOTPHandler(&stubOTPService{
		requestFn: func(context.Context, string) error {
			t.Fatalf("should not be called")
			return nil
		},
	})

	c, _ := newTestContext(t, http.MethodPost, "/request-otp", "not-json")
	err := h.RequestOTP(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestOTPHandler_RequestOTP_MalformedEmail(t *testing.T) {
	h := NewOTPHandler(&stubOTPService{
		requestFn: func(context.Context, string) error {
			t.Fatalf("should not be called")
			return nil
		},
	})

	c, _ := newTestContext(t, http.MethodPost, "/request-otp", `{"email":"not-an-email"}`)
	err := h.RequestOTP(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestOTPHandler_RequestOTP_ServiceErrorPassesThrough(t *testing.T) {
	h := NewOTPHandler(&stubOTPService{
		requestFn: func(context.Context, string) error {
			return &domain.CooldownError{Remaining: 30 * time.Second}
		},
	})

	c, _ := newTestContext(t, http.MethodPost, "/request-otp", `{"email":"a@x.com"}`)
	if err := h.RequestOTP(c); !errors.Is(err, domain.ErrCooldownActive) {
		t.Fatalf("expected cooldown error to pass through, got %v", err)
	}
}

func TestOTPHandler_VerifyOTP_Success(t *testing.T) {
	stub := &stubOTPService{
		verifyFn: func(_ context.Context, email, code string) error {
			if email != "a@x.com" || code != "123456" {
				t.Fatalf("unexpected args: %q %q", email, code)
			}
			return nil
		},
	}
	h := NewOTPHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/verify-otp", `{"email":"a@x.com","otp":"123456"}`)
	if err := h.VerifyOTP(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOTPHandler_VerifyOTP_NonNumericCode(t *testing.T) {
	h := NewOTPHandler(&stubOTPService{
		verifyFn: func(context.Context, string, string) error {
			t.Fatalf("should not be called")
			return nil
		},
	})

	c, _ := newTestContext(t, http.MethodPost, "/verify-otp", `{"email":"a@x.com","otp":"abc123"}`)
	err := h.VerifyOTP(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}
