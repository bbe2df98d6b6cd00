package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/splax/notes/internal/apperr"
	"github.com/splax/notes/internal/domain"
	"github.com/splax/notes/internal/repository"
	"github.com/splax/notes/internal/revocation"
	"github.com/splax/notes/pkg/config"
	"github.com/splax/notes/pkg/crypto"
	jwtpkg "github.com/splax/notes/pkg/jwt"
)

var (
	// ErrInvalidCredentials is returned for every failed login, whatever the cause.
	ErrInvalidCredentials = apperr.New(apperr.Auth, "invalid credentials")
	// ErrInvalidToken is returned for missing, malformed, expired or revoked tokens.
	ErrInvalidToken = apperr.New(apperr.Auth, "invalid or expired token")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = apperr.New(apperr.Conflict, "email already registered")

	errMissingFields = apperr.New(apperr.Validation, "name, email and password are required")
)

// Service handles authentication workflows.
type Service struct {
	users     repository.UserRepository
	denylist  revocation.Denylist
	logger    *slog.Logger
	cfg       config.APIConfig
	dummyHash []byte
	now       func() time.Time
}

// New constructs a Service. denylist may be nil, in which case tokens are
// checked by signature and expiry alone.
func New(users repository.UserRepository, denylist revocation.Denylist, logger *slog.Logger, cfg config.APIConfig) Service {
	// Unknown-email logins compare against this so they cost the same as a wrong password.
	dummy, err := crypto.HashPassword(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		logger.Error("failed to prepare dummy password hash", "error", err)
	}
	return Service{users: users, denylist: denylist, logger: logger, cfg: cfg, dummyHash: dummy, now: time.Now}
}

// Session is the result of a successful register or login.
type Session struct {
	Token string
	User  *domain.User
}

// Register creates an account and issues a token for it.
func (s Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, errMissingFields
	}
	hash, err := crypto.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "hash password", err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, apperr.Wrap(apperr.Internal, "create user", err)
	}
	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return &Session{Token: token, User: user}, nil
}

// Login authenticates a user and returns a fresh token. Unknown email and
// wrong password are reported identically.
func (s Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Wrap(apperr.Internal, "load user", err)
		}
		_ = crypto.ComparePassword(s.dummyHash, password)
		s.logger.Debug("login rejected", "reason", "unknown_email")
		return nil, ErrInvalidCredentials
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Debug("login rejected", "reason", "password_mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return &Session{Token: token, User: user}, nil
}

// Verify validates a bearer token by signature and expiry and returns its
// claims. No user lookup happens here.
func (s Service) Verify(ctx context.Context, token string) (*jwtpkg.Claims, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, ErrInvalidToken
	}
	claims, err := jwtpkg.Parse(trimmed, s.cfg.JWTSecret)
	if err != nil {
		return nil, apperr.Wrap(apperr.Auth, ErrInvalidToken.Message, err)
	}
	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "check token revocation", err)
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

// Logout revokes the token described by claims when a denylist is configured.
// Without one it is a no-op and clients simply discard the token.
func (s Service) Logout(ctx context.Context, claims *jwtpkg.Claims) error {
	if s.denylist == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperr.Wrap(apperr.Internal, "revoke token", err)
	}
	s.logger.Info("token revoked", "user_id", claims.UserID)
	return nil
}

func (s Service) issueToken(userID string) (string, error) {
	token, err := jwtpkg.GenerateToken(userID, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "issue token", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
