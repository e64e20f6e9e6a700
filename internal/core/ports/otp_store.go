package ports

import (
	"context"
	"time"

	"github.com/storefront/auth-system/internal/core/domain"
)

// OTPStore persists per-email verification state: the single active OTP
// record, the resend cooldown, and the verified-email marker. Records are
// TTL-bounded so stale state cannot accumulate.
type OTPStore interface {
	// SaveRecord stores the record, replacing any previous one for the same
	// email. ttl bounds the record's physical lifetime; logical expiry is the
	// record's own ExpiresAt.
	SaveRecord(ctx context.Context, record *domain.OTPRecord, ttl time.Duration) error
	// GetRecord returns domain.ErrNoPendingOTP when no record exists.
	GetRecord(ctx context.Context, email string) (*domain.OTPRecord, error)
	DeleteRecord(ctx context.Context, email string) error

	// ReserveCooldown atomically claims the resend cooldown for email. When
	// the cooldown is already held it returns the remaining wait (> 0) and
	// claims nothing; otherwise it starts a new window and returns 0.
	ReserveCooldown(ctx context.Context, email string, window time.Duration) (time.Duration, error)

	// SaveMarker stores the verified-email proof consumed at signup.
	SaveMarker(ctx context.Context, marker *domain.VerifiedEmailMarker, ttl time.Duration) error
	// GetMarker returns domain.ErrEmailNotVerified when no marker exists.
	GetMarker(ctx context.Context, email string) (*domain.VerifiedEmailMarker, error)
	DeleteMarker(ctx context.Context, email string) error
}
