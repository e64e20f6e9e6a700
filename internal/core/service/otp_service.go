package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"hash/fnv"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/auth-system/internal/core/domain"
	"github.com/storefront/auth-system/internal/core/ports"
)

const (
	defaultOTPTTL      = 10 * time.Minute
	defaultCooldown    = 60 * time.Second
	defaultMarkerTTL   = 15 * time.Minute
	defaultMaxAttempts = 5

	// recordGrace keeps an expired or exhausted record around long enough to
	// answer verify calls with Expired / TooManyAttempts instead of
	// NoPendingOTP. The store's TTL purges it afterwards.
	recordGrace = 5 * time.Minute

	lockShards = 64
)

// OTPService implements the verification-code lifecycle: issue, deliver,
// verify, expire. State transitions for a given email are serialized through
// a sharded lock so a resend can never race a verify.
type OTPService struct {
	store  ports.OTPStore
	users  ports.UserRepository
	mailer ports.Mailer
	logger zerolog.Logger

	otpTTL      time.Duration
	cooldown    time.Duration
	markerTTL   time.Duration
	maxAttempts int

	locks [lockShards]sync.Mutex
	now   func() time.Time
}

type OTPServiceOption func(*OTPService)

// WithOTPTTL overrides the code validity window.
func WithOTPTTL(d time.Duration) OTPServiceOption {
	return func(s *OTPService) { s.otpTTL = d }
}

// WithCooldown overrides the resend cooldown window.
func WithCooldown(d time.Duration) OTPServiceOption {
	return func(s *OTPService) { s.cooldown = d }
}

// WithMarkerTTL overrides the verified-email marker lifetime.
func WithMarkerTTL(d time.Duration) OTPServiceOption {
	return func(s *OTPService) { s.markerTTL = d }
}

func NewOTPService(store ports.OTPStore, users ports.UserRepository, mailer ports.Mailer, logger zerolog.Logger, opts ...OTPServiceOption) *OTPService {
	s := &OTPService{
		store:       store,
		users:       users,
		mailer:      mailer,
		logger:      logger,
		otpTTL:      defaultOTPTTL,
		cooldown:    defaultCooldown,
		markerTTL:   defaultMarkerTTL,
		maxAttempts: defaultMaxAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.otpTTL <= 0 {
		s.otpTTL = defaultOTPTTL
	}
	if s.cooldown <= 0 {
		s.cooldown = defaultCooldown
	}
	if s.markerTTL <= 0 {
		s.markerTTL = defaultMarkerTTL
	}
	return s
}

// RequestOTP issues a fresh code for email and delivers it. A new code
// supersedes any pending one. Delivery happens after the email's lock is
// released; a delivery failure is reported but does not roll the record back,
// so a code that did reach the user is still usable.
func (s *OTPService) RequestOTP(ctx context.Context, email string) error {
	email = domain.CanonicalEmail(email)
	if !domain.ValidEmail(email) {
		return domain.ErrInvalidEmail
	}

	code, err := s.issue(ctx, email)
	if err != nil {
		return err
	}

	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("otp delivery failed")
		return domain.ErrDeliveryFailed
	}

	s.logger.Info().Str("email", email).Msg("otp issued")
	return nil
}

// issue creates and stores the record under the email's lock and returns the
// generated code. Delivery is deliberately outside: the lock must not be held
// across a network call.
func (s *OTPService) issue(ctx context.Context, email string) (string, error) {
	mu := s.lockFor(email)
	mu.Lock()
	defer mu.Unlock()

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return "", domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return "", fmt.Errorf("lookup user: %w", err)
	}

	remaining, err := s.store.ReserveCooldown(ctx, email, s.cooldown)
	if err != nil {
		return "", fmt.Errorf("reserve cooldown: %w", err)
	}
	if remaining > 0 {
		return "", &domain.CooldownError{Remaining: remaining}
	}

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	now := s.now().UTC()
	record := &domain.OTPRecord{
		Email:             email,
		Code:              code,
		ExpiresAt:         now.Add(s.otpTTL),
		AttemptsRemaining: s.maxAttempts,
		CreatedAt:         now,
	}

	if err := s.store.SaveRecord(ctx, record, s.otpTTL+recordGrace); err != nil {
		return "", fmt.Errorf("save otp record: %w", err)
	}
	return code, nil
}

// VerifyOTP checks a submitted code. On match the record is consumed and a
// verified-email marker is written; the same code can never succeed twice.
func (s *OTPService) VerifyOTP(ctx context.Context, email, code string) error {
	email = domain.CanonicalEmail(email)

	mu := s.lockFor(email)
	mu.Lock()
	defer mu.Unlock()

	record, err := s.store.GetRecord(ctx, email)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	if record.Expired(now) {
		if err := s.store.DeleteRecord(ctx, email); err != nil {
			s.logger.Warn().Err(err).Str("email", email).Msg("failed to purge expired otp")
		}
		return domain.ErrOTPExpired
	}

	if record.AttemptsRemaining <= 0 {
		return domain.ErrTooManyAttempts
	}

	if code != record.Code {
		record.AttemptsRemaining--
		ttl := record.ExpiresAt.Sub(now) + recordGrace
		if err := s.store.SaveRecord(ctx, record, ttl); err != nil {
			return fmt.Errorf("save otp record: %w", err)
		}
		if record.AttemptsRemaining == 0 {
			s.logger.Warn().Str("email", email).Msg("otp attempt budget exhausted")
			return domain.ErrTooManyAttempts
		}
		return domain.ErrOTPInvalid
	}

	if err := s.store.DeleteRecord(ctx, email); err != nil {
		return fmt.Errorf("consume otp record: %w", err)
	}

	marker := &domain.VerifiedEmailMarker{Email: email, VerifiedAt: now}
	if err := s.store.SaveMarker(ctx, marker, s.markerTTL); err != nil {
		return fmt.Errorf("save verified marker: %w", err)
	}

	s.logger.Info().Str("email", email).Msg("email verified")
	return nil
}

// lockFor maps an email deterministically to one of the shard locks.
func (s *OTPService) lockFor(email string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return &s.locks[h.Sum32()%lockShards]
}

// generateCode draws a uniformly random 6-digit code from 100000 to 999999.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
