package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/auth-system/internal/core/domain"
	"github.com/storefront/auth-system/internal/core/ports"
)

const (
	defaultSessionTTL = 24 * time.Hour
	minPasswordLen    = 8
	// tokenBytes gives 256 bits of entropy per token.
	tokenBytes = 32
)

// SessionService implements credential handling and opaque-token sessions.
// Only Signup and Login pay the bcrypt cost; token validation is a plain
// store lookup.
type SessionService struct {
	users      ports.UserRepository
	sessions   ports.SessionStore
	otpStore   ports.OTPStore
	logger     zerolog.Logger
	sessionTTL time.Duration
	bcryptCost int
	now        func() time.Time
}

func NewSessionService(users ports.UserRepository, sessions ports.SessionStore, otpStore ports.OTPStore, logger zerolog.Logger, sessionTTL time.Duration, bcryptCost int) *SessionService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &SessionService{
		users:      users,
		sessions:   sessions,
		otpStore:   otpStore,
		logger:     logger,
		sessionTTL: sessionTTL,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Signup creates an account for an email that holds an unexpired
// verified-email marker, consumes the marker, and opens a session.
func (s *SessionService) Signup(ctx context.Context, name, email, password string) (*domain.User, *domain.Session, error) {
	email = domain.CanonicalEmail(email)
	if !domain.ValidEmail(email) {
		return nil, nil, domain.ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, nil, domain.ErrWeakPassword
	}

	if _, err := s.otpStore.GetMarker(ctx, email); err != nil {
		if errors.Is(err, domain.ErrEmailNotVerified) {
			return nil, nil, domain.ErrEmailNotVerified
		}
		return nil, nil, fmt.Errorf("lookup verified marker: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.otpStore.DeleteMarker(ctx, email); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to consume verified marker")
	}

	session, err := s.openSession(ctx, created.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("email", email).Msg("account created")
	return created, session, nil
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	email = domain.CanonicalEmail(email)
	if email == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("login")
	return user, session, nil
}

// Logout destroys the session. Absent or already-expired tokens are not an
// error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// GetProfile resolves a token to its user.
func (s *SessionService) GetProfile(ctx context.Context, token string) (*domain.User, error) {
	session, err := s.validate(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// RefreshToken rotates the session: a new token with a fresh expiry replaces
// the old one, which stops working immediately.
func (s *SessionService) RefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	session, err := s.validate(ctx, token)
	if err != nil {
		return nil, err
	}

	next, err := s.newSession(session.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Rotate(ctx, token, next); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	return next, nil
}

func (s *SessionService) validate(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now().UTC()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, domain.ErrUnauthenticated
	}
	return session, nil
}

func (s *SessionService) openSession(ctx context.Context, userID string) (*domain.Session, error) {
	session, err := s.newSession(userID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

func (s *SessionService) newSession(userID string) (*domain.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: s.now().UTC().Add(s.sessionTTL),
	}, nil
}

// generateToken returns an opaque URL-safe token with tokenBytes of entropy.
func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
