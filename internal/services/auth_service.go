package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"coopsite/internal/apperr"
	"coopsite/internal/domain"
	"coopsite/internal/repos"
	"coopsite/internal/validate"
)

var ErrBadCreds = errors.New("invalid username or password")

const DefaultSessionTTL = 12 * time.Hour

type AuthService struct {
	Users *repos.UserRepo
	TTL   time.Duration
	Cost  int // bcrypt cost for new hashes; 0 means bcrypt.DefaultCost
	Now   Clock
}

func NewAuthService(users *repos.UserRepo, ttl time.Duration) *AuthService {
	return &AuthService{Users: users, TTL: ttl}
}

// dummyHash is compared against when the username is unknown, so both
// failure paths spend a bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return h
})

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.AdminUser, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	u, err := s.Users.ActiveByUsername(ctx, username)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, ErrBadCreds
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	at := repos.Timestamp(s.Now.now())
	if err := s.Users.TouchLastLogin(ctx, u.ID, at); err != nil {
		return nil, err
	}
	u.LastLogin = &at
	return u, nil
}

func (s *AuthService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

// StartSession issues a fresh opaque token for adminID.
func (s *AuthService) StartSession(ctx context.Context, adminID string) (domain.Session, error) {
	now := s.Now.now()
	if _, err := s.Users.PurgeExpiredSessions(ctx, repos.Timestamp(now)); err != nil {
		return domain.Session{}, err
	}
	sess := domain.Session{
		Token:     uuid.NewString() + uuid.NewString(),
		AdminID:   adminID,
		CreatedAt: repos.Timestamp(now),
		ExpiresAt: repos.Timestamp(now.Add(s.ttl())),
	}
	if err := s.Users.CreateSession(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// CurrentAdmin resolves a session token. Expired sessions and deactivated
// accounts yield a not-found error.
func (s *AuthService) CurrentAdmin(ctx context.Context, token string) (*domain.AdminUser, error) {
	if token == "" {
		return nil, apperr.NotFound("sessions.admin")
	}
	return s.Users.SessionAdmin(ctx, token, repos.Timestamp(s.Now.now()))
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.Users.DeleteSession(ctx, token)
}

func (s *AuthService) CreateAdmin(ctx context.Context, username, password, email string) (*domain.AdminUser, error) {
	username, ok := validate.Username(username)
	if !ok {
		return nil, apperr.Validation("username", "username must be 3-32 of a-z 0-9 . _ -")
	}
	if !validate.Password(password) {
		return nil, apperr.Validation("password", "password needs 8-72 chars with upper, lower, digit and symbol")
	}
	email = strings.TrimSpace(email)
	if email != "" {
		if email, ok = validate.Email(email); !ok {
			return nil, apperr.Validation("email", "invalid email")
		}
	}
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, apperr.Transport("admins.hash", err)
	}
	u := domain.AdminUser{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		CreatedAt:    repos.Timestamp(s.Now.now()),
		Active:       true,
	}
	if err := s.Users.Insert(ctx, u); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("admins.insert", "username already taken")
		}
		return nil, err
	}
	return &u, nil
}

// SeedAdmin creates the "admin" account when no admin exists yet.
// It reports whether an account was created.
func (s *AuthService) SeedAdmin(ctx context.Context, password string) (bool, error) {
	n, err := s.Users.Count(ctx)
	if err != nil || n > 0 {
		return false, err
	}
	if _, err := s.CreateAdmin(ctx, "admin", password, ""); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) SetActive(ctx context.Context, username string, active bool) error {
	username, ok := validate.Username(username)
	if !ok {
		return apperr.Validation("username", "invalid username")
	}
	return s.Users.SetActive(ctx, username, active)
}

// PurgeExpired drops sessions that are past their expiry.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.Users.PurgeExpiredSessions(ctx, repos.Timestamp(s.Now.now()))
}
