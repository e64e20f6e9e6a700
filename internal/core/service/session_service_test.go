package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/auth-system/internal/core/domain"
)

type stubSessionStore struct {
	sessions map[string]*domain.Session
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *stubSessionStore) Save(_ context.Context, session *domain.Session) error {
	clone := *session
	s.sessions[session.Token] = &clone
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, token string) (*domain.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	clone := *session
	return &clone, nil
}

func (s *stubSessionStore) Delete(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func (s *stubSessionStore) Rotate(_ context.Context, oldToken string, session *domain.Session) error {
	delete(s.sessions, oldToken)
	clone := *session
	s.sessions[session.Token] = &clone
	return nil
}

type sessionFixture struct {
	svc      *SessionService
	users    *stubUserRepo
	sessions *stubSessionStore
	otpStore *stubOTPStore
	clock    time.Time
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		users:    newStubUserRepo(),
		sessions: newStubSessionStore(),
		clock:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return f.clock }
	f.otpStore = newStubOTPStore(now)
	f.svc = NewSessionService(f.users, f.sessions, f.otpStore, zerolog.Nop(), 24*time.Hour, bcrypt.MinCost)
	f.svc.now = now
	return f
}

func (f *sessionFixture) markVerified(email string) {
	_ = f.otpStore.SaveMarker(context.Background(), &domain.VerifiedEmailMarker{
		Email:      email,
		VerifiedAt: f.clock,
	}, 15*time.Minute)
}

func TestSignup_RequiresVerifiedEmail(t *testing.T) {
	f := newSessionFixture()

	_, _, err := f.svc.Signup(context.Background(), "A", "a@x.com", "longpassword1")
	if !errors.Is(err, domain.ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
}

func TestSignup_WeakPassword(t *testing.T) {
	f := newSessionFixture()
	f.markVerified("a@x.com")

	_, _, err := f.svc.Signup(context.Background(), "A", "a@x.com", "short")
	if !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestSignup_Success(t *testing.T) {
	f := newSessionFixture()
	f.markVerified("a@x.com")

	user, session, err := f.svc.Signup(context.Background(), "A", " A@X.com ", "longpassword1")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("expected canonical email, got %q", user.Email)
	}
	if user.Role != domain.RoleCustomer {
		t.Fatalf("expected customer role, got %q", user.Role)
	}
	if user.PasswordHash == "longpassword1" {
		t.Fatalf("password stored in the clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("longpassword1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if session == nil || session.Token == "" {
		t.Fatalf("expected a session token")
	}
	if len(session.Token) < 22 {
		t.Fatalf("token too short for 128 bits of entropy: %d chars", len(session.Token))
	}

	// Marker is consumed: a second signup for the same email is gated again
	// before it can even hit the duplicate check.
	if _, _, err := f.svc.Signup(context.Background(), "A2", "a@x.com", "longpassword2"); !errors.Is(err, domain.ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified after marker consumed, got %v", err)
	}
}

func TestSignup_EmailTaken(t *testing.T) {
	f := newSessionFixture()
	f.markVerified("a@x.com")
	_, _, err := f.svc.Signup(context.Background(), "A", "a@x.com", "longpassword1")
	if err != nil {
		t.Fatalf("first signup failed: %v", err)
	}

	f.markVerified("a@x.com")
	if _, _, err := f.svc.Signup(context.Background(), "B", "a@x.com", "longpassword2"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	f := newSessionFixture()
	f.markVerified("a@x.com")
	_, _, _ = f.svc.Signup(context.Background(), "A", "a@x.com", "longpassword1")

	user, session, err := f.svc.Login(context.Background(), "A@x.com", "longpassword1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if session == nil || session.Token == "" {
		t.Fatalf("expected a session token")
	}
}

func TestLogin_IndistinguishableFailures(t *testing.T) {
	f := newSessionFixture()
	f.markVerified("a@x.com")
	_, _, _ = f.svc.Signup(context.Background(), "A", "a@x.com", "longpassword1")

	_, _, errWrongPass := f.svc.Login(context.Background(), "a@x.com", "wrongpassword")
	_, _, errUnknown := f.svc.Login(context.Background(), "ghost@x.com", "whatever123")

	if !errors.Is(errWrongPass, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrongPass)
	}
	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", errUnknown)
	}
	if errWrongPass.Error() != errUnknown.Error() {
		t.Fatalf("failure messages differ: %q vs %q", errWrongPass.Error(), errUnknown.Error())
	}
}

func TestLogout_Idempotent(t *testing.T) {
	f := newSessionFixture()
	f.markVerified("a@x.com")
	_, session, _ := f.svc.Signup(context.Background(), "A", "a@x.com", "longpassword1")

	if err := f.svc.Logout(context.Background(), session.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := f.svc.GetProfile(context.Background(), session.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after logout, got %v", err)
	}

	// Logging out again, or with no token at all, is not an error.
	if err := f.svc.Logout(context.Background(), session.Token); err != nil {
		t.Fatalf("repeated logout failed: %v", err)
	}
	if err := f.svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("logout without token failed: %v", err)
	}
}

func TestGetProfile(t *testing.T) {
	f := newSessionFixture()
	f.markVerified("a@x.com")
	created, session, _ := f.svc.Signup(context.Background(), "A", "a@x.com", "longpassword1")

	user, err := f.svc.GetProfile(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if user.ID != created.ID || user.Name != "A" || user.Email != "a@x.com" {
		t.Fatalf("unexpected profile: %+v", user)
	}

	if _, err := f.svc.GetProfile(context.Background(), ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for missing token, got %v", err)
	}
	if _, err := f.svc.GetProfile(context.Background(), "bogus"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for unknown token, got %v", err)
	}
}

func TestGetProfile_ExpiredSession(t *testing.T) {
	f := newSessionFixture()
	f.markVerified("a@x.com")
	_, session, _ := f.svc.Signup(context.Background(), "A", "a@x.com", "longpassword1")

	f.clock = f.clock.Add(25 * time.Hour)
	if _, err := f.svc.GetProfile(context.Background(), session.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for expired session, got %v", err)
	}
}

func TestRefreshToken_RotatesSession(t *testing.T) {
	f := newSessionFixture()
	f.markVerified("a@x.com")
	_, session, _ := f.svc.Signup(context.Background(), "A", "a@x.com", "longpassword1")

	f.clock = f.clock.Add(12 * time.Hour)
	next, err := f.svc.RefreshToken(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if next.Token == session.Token {
		t.Fatalf("refresh must issue a new token")
	}
	if !next.ExpiresAt.After(session.ExpiresAt) {
		t.Fatalf("refresh must extend expiry: old %v, new %v", session.ExpiresAt, next.ExpiresAt)
	}

	// The old token is dead; the new one works.
	if _, err := f.svc.GetProfile(context.Background(), session.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("old token must be invalid after rotation, got %v", err)
	}
	if _, err := f.svc.GetProfile(context.Background(), next.Token); err != nil {
		t.Fatalf("new token must be valid: %v", err)
	}

	if _, err := f.svc.RefreshToken(context.Background(), "bogus"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for unknown token, got %v", err)
	}
}
