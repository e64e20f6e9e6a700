package domain

import "time"

// OTPRecord is the single active verification code for an email address.
// A new request supersedes any prior record; the record is consumed on
// successful verification, on expiry, or when the attempt budget runs out.
type OTPRecord struct {
	Email             string    `json:"email"`
	Code              string    `json:"code"`
	ExpiresAt         time.Time `json:"expires_at"`
	AttemptsRemaining int       `json:"attempts_remaining"`
	CreatedAt         time.Time `json:"created_at"`
}

// Expired reports whether the record's validity window has passed.
func (r *OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// VerifiedEmailMarker is the server-side proof that an email address passed
// OTP verification. Signup requires an unexpired marker and consumes it.
type VerifiedEmailMarker struct {
	Email      string    `json:"email"`
	VerifiedAt time.Time `json:"verified_at"`
}
