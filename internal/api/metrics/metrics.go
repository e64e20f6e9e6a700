// Package metrics defines and registers all custom Prometheus metrics for the
// storefront auth service. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/storefront/auth-system/internal/core/domain"
)

const namespace = "storefront_auth"

// OTPRequestsTotal counts OTP issue attempts.
// Label:
//   - result: "ok" or a failure reason ("cooldown", "user_exists",
//     "delivery_failed", "invalid_email", "error")
var OTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_requests_total",
		Help:      "Total number of OTP issue requests, by result.",
	},
	[]string{"result"},
)

// OTPVerificationsTotal counts OTP verification attempts.
// Label:
//   - result: "ok" or a failure reason ("invalid", "expired",
//     "too_many_attempts", "no_pending", "error")
var OTPVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_verifications_total",
		Help:      "Total number of OTP verification attempts, by result.",
	},
	[]string{"result"},
)

// SignupsTotal counts account creation attempts.
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// Result maps a service error to the metric result label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrCooldownActive):
		return "cooldown"
	case errors.Is(err, domain.ErrUserExists):
		return "user_exists"
	case errors.Is(err, domain.ErrDeliveryFailed):
		return "delivery_failed"
	case errors.Is(err, domain.ErrInvalidEmail):
		return "invalid_email"
	case errors.Is(err, domain.ErrOTPInvalid):
		return "invalid"
	case errors.Is(err, domain.ErrOTPExpired):
		return "expired"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "too_many_attempts"
	case errors.Is(err, domain.ErrNoPendingOTP):
		return "no_pending"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return "email_not_verified"
	case errors.Is(err, domain.ErrWeakPassword):
		return "weak_password"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
