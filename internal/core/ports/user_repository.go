package ports

import (
	"context"

	"github.com/storefront/auth-system/internal/core/domain"
)

// UserRepository defines the interface for user account persistence.
// Emails are expected in canonical form by every method.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
