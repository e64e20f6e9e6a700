package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront/auth-system/internal/core/domain"
)

// SessionStore keeps sessions in Redis keyed by token, with the key TTL
// matching the session expiry. Key layout: session:<token>.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

type sessionDoc struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	raw, ttl, err := encodeSession(session)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, sessionKey(session.Token), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var doc sessionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &domain.Session{Token: token, UserID: doc.UserID, ExpiresAt: doc.ExpiresAt}, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Rotate removes the old token and writes the replacement in one pipeline,
// so the two are never valid at the same time.
func (s *SessionStore) Rotate(ctx context.Context, oldToken string, session *domain.Session) error {
	raw, ttl, err := encodeSession(session)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(oldToken))
	pipe.Set(ctx, sessionKey(session.Token), raw, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	return nil
}

func encodeSession(session *domain.Session) ([]byte, time.Duration, error) {
	raw, err := json.Marshal(sessionDoc{UserID: session.UserID, ExpiresAt: session.ExpiresAt})
	if err != nil {
		return nil, 0, fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return raw, ttl, nil
}

func sessionKey(token string) string { return "session:" + token }
