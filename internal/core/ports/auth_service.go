package ports

import (
	"context"

	"github.com/storefront/auth-system/internal/core/domain"
)

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*domain.User, *domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error)
	Logout(ctx context.Context, token string) error
	GetProfile(ctx context.Context, token string) (*domain.User, error)
	RefreshToken(ctx context.Context, token string) (*domain.Session, error)
}
