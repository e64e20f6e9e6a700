package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrUserExists   = errors.New("an account already exists for this email")
	ErrUserNotFound = errors.New("user not found")

	ErrNoPendingOTP    = errors.New("no pending verification code for this email")
	ErrOTPInvalid      = errors.New("incorrect verification code")
	ErrOTPExpired      = errors.New("verification code has expired")
	ErrTooManyAttempts = errors.New("too many incorrect attempts, request a new code")
	ErrCooldownActive  = errors.New("a code was sent recently, wait before requesting another")
	ErrDeliveryFailed  = errors.New("failed to deliver verification email")

	ErrEmailNotVerified   = errors.New("email has not been verified")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("authentication required")
)

// CooldownError reports how long a caller must wait before requesting
// another OTP for the same email. It matches ErrCooldownActive under
// errors.Is so the boundary can map it without knowing the concrete type.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("retry in %d seconds", e.RetryAfterSeconds())
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

// RetryAfterSeconds rounds the remaining cooldown up to whole seconds, so a
// client that waits the reported time is guaranteed to be out of the window.
func (e *CooldownError) RetryAfterSeconds() int {
	secs := int((e.Remaining + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
