package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/user"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// SessionStore keeps login sessions keyed by token.
type SessionStore interface {
	Get(ctx context.Context, key string) (any, bool)
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

const sessionKeyPrefix = "session:"

type Principal struct {
	UserID   int64
	Username string
}

type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// UpdateAccountInput leaves fields that are empty unchanged.
type UpdateAccountInput struct {
	Username  string
	Email     string
	ImageFile string
}

type AuthConfig struct {
	SessionTTL time.Duration
}

// AuthService covers registration, login sessions and the account page.
type AuthService struct {
	users    user.Repository
	hasher   PasswordHasher
	tokens   TokenGenerator
	sessions SessionStore
	cfg      AuthConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewAuthService(
	users user.Repository,
	hasher PasswordHasher,
	tokens TokenGenerator,
	sessions SessionStore,
	cfg AuthConfig,
	logger *logging.Logger,
) *AuthService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger.Named("auth"),
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Register")
	defer span.End()

	username, err := normalizeUsername(input.Username)
	if err != nil {
		return user.User{}, err
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return user.User{}, err
	}
	if len(input.Password) < 8 {
		return user.User{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return user.User{}, err
	}
	created, err := s.users.Create(ctx, user.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		ImageFile:    user.DefaultImageFile,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return user.User{}, mapUserWriteError(err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", created.ID)
	return created, nil
}

// Login checks the credentials and opens a session. Unknown email and wrong
// password fail the same way.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Login")
	defer span.End()

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return Session{}, err
	}
	u, ok, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return Session{}, fmt.Errorf("get user by email: %w", err)
	}
	if !ok {
		return Session{}, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err := s.hasher.Compare(u.PasswordHash, input.Password); err != nil {
		return Session{}, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	token, err := s.tokens.NewToken()
	if err != nil {
		return Session{}, fmt.Errorf("create session token: %w", err)
	}
	session := Session{
		Token:     token,
		UserID:    u.ID,
		ExpiresAt: s.now().Add(s.cfg.SessionTTL).UTC(),
	}
	s.sessions.SetTTL(ctx, sessionKeyPrefix+token, Principal{UserID: u.ID, Username: u.Username}, s.cfg.SessionTTL)
	return session, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	s.sessions.Delete(ctx, sessionKeyPrefix+token)
}

// VerifyToken resolves a bearer token to its session principal.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	value, ok := s.sessions.Get(ctx, sessionKeyPrefix+token)
	if !ok {
		return Principal{}, fmt.Errorf("%w: session expired or unknown", ErrUnauthorized)
	}
	principal, ok := value.(Principal)
	if !ok {
		return Principal{}, fmt.Errorf("%w: malformed session", ErrUnauthorized)
	}
	return principal, nil
}

func (s *AuthService) Account(ctx context.Context, userID int64) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Account")
	defer span.End()

	u, ok, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user=%d: %w", userID, err)
	}
	if !ok {
		return user.User{}, fmt.Errorf("%w: user=%d", ErrNotFound, userID)
	}
	return u, nil
}

func (s *AuthService) UpdateAccount(ctx context.Context, userID int64, input UpdateAccountInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.UpdateAccount")
	defer span.End()

	u, err := s.Account(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if strings.TrimSpace(input.Username) != "" {
		if u.Username, err = normalizeUsername(input.Username); err != nil {
			return user.User{}, err
		}
	}
	if strings.TrimSpace(input.Email) != "" {
		if u.Email, err = normalizeEmail(input.Email); err != nil {
			return user.User{}, err
		}
	}
	if image := strings.TrimSpace(input.ImageFile); image != "" {
		if strings.ContainsAny(image, `/\`) {
			return user.User{}, fmt.Errorf("%w: image file must be a bare file name", ErrInvalidInput)
		}
		u.ImageFile = image
	}

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		return user.User{}, mapUserWriteError(err)
	}
	return updated, nil
}

func normalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if n := len(username); n < 3 || n > 30 {
		return "", fmt.Errorf("%w: username must be 3 to 30 characters", ErrInvalidInput)
	}
	return username, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || len(email) > 50 {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return email, nil
}

func mapUserWriteError(err error) error {
	switch {
	case errors.Is(err, user.ErrUsernameTaken), errors.Is(err, user.ErrEmailTaken):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return fmt.Errorf("save user: %w", err)
	}
}
