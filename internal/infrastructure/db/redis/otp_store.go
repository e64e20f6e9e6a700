package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront/auth-system/internal/core/domain"
)

// OTPStore keeps per-email verification state in Redis. Every key carries a
// TTL, so stale records vanish without a sweeper.
//
// Key layout:
//
//	otp:code:<email>     JSON OTPRecord
//	otp:cooldown:<email> resend cooldown sentinel
//	otp:verified:<email> JSON VerifiedEmailMarker
type OTPStore struct {
	client *redis.Client
}

func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

func (s *OTPStore) SaveRecord(ctx context.Context, record *domain.OTPRecord, ttl time.Duration) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	if err := s.client.Set(ctx, recordKey(record.Email), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save otp record: %w", err)
	}
	return nil
}

func (s *OTPStore) GetRecord(ctx context.Context, email string) (*domain.OTPRecord, error) {
	raw, err := s.client.Get(ctx, recordKey(email)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNoPendingOTP
	}
	if err != nil {
		return nil, fmt.Errorf("get otp record: %w", err)
	}

	var record domain.OTPRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("unmarshal otp record: %w", err)
	}
	return &record, nil
}

func (s *OTPStore) DeleteRecord(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, recordKey(email)).Err(); err != nil {
		return fmt.Errorf("delete otp record: %w", err)
	}
	return nil
}

// ReserveCooldown claims the resend window with SET NX. When the window is
// already held, the key's remaining TTL is the wait the caller must report.
func (s *OTPStore) ReserveCooldown(ctx context.Context, email string, window time.Duration) (time.Duration, error) {
	key := cooldownKey(email)

	// Two passes cover the narrow case where the key expires between the
	// failed SET NX and the PTTL read.
	for range 2 {
		ok, err := s.client.SetNX(ctx, key, "1", window).Result()
		if err != nil {
			return 0, fmt.Errorf("reserve cooldown: %w", err)
		}
		if ok {
			return 0, nil
		}

		remaining, err := s.client.PTTL(ctx, key).Result()
		if err != nil {
			return 0, fmt.Errorf("cooldown ttl: %w", err)
		}
		if remaining > 0 {
			return remaining, nil
		}
	}
	return window, nil
}

func (s *OTPStore) SaveMarker(ctx context.Context, marker *domain.VerifiedEmailMarker, ttl time.Duration) error {
	raw, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("marshal verified marker: %w", err)
	}
	if err := s.client.Set(ctx, markerKey(marker.Email), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save verified marker: %w", err)
	}
	return nil
}

func (s *OTPStore) GetMarker(ctx context.Context, email string) (*domain.VerifiedEmailMarker, error) {
	raw, err := s.client.Get(ctx, markerKey(email)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrEmailNotVerified
	}
	if err != nil {
		return nil, fmt.Errorf("get verified marker: %w", err)
	}

	var marker domain.VerifiedEmailMarker
	if err := json.Unmarshal(raw, &marker); err != nil {
		return nil, fmt.Errorf("unmarshal verified marker: %w", err)
	}
	return &marker, nil
}

func (s *OTPStore) DeleteMarker(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, markerKey(email)).Err(); err != nil {
		return fmt.Errorf("delete verified marker: %w", err)
	}
	return nil
}

func recordKey(email string) string   { return "otp:code:" + email }
func cooldownKey(email string) string { return "otp:cooldown:" + email }
func markerKey(email string) string   { return "otp:verified:" + email }
