package ports

import (
	"context"

	"github.com/storefront/auth-system/internal/core/domain"
)

// SessionStore persists sessions keyed by their opaque token.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	// Get returns domain.ErrUnauthenticated when the token is unknown.
	Get(ctx context.Context, token string) (*domain.Session, error)
	// Delete is idempotent; deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
	// Rotate atomically replaces oldToken with the given session, so the old
	// token is never valid alongside the new one.
	Rotate(ctx context.Context, oldToken string, session *domain.Session) error
}
