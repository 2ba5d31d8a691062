package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domainuser "freebie/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrSessionNotFound    = errors.New("auth: session not found")
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenGenerator mints opaque session tokens.
type TokenGenerator interface {
	NewToken() (string, error)
}

// UserRepository persists profile rows.
type UserRepository interface {
	ByID(ctx context.Context, id domainuser.ID) (domainuser.User, error)
	ByEmail(ctx context.Context, email string) (domainuser.User, error)
	Save(ctx context.Context, u domainuser.User) error
	Delete(ctx context.Context, id domainuser.ID) error
}

// Session associates an opaque token with a user until expiry.
type Session struct {
	Token     string
	UserID    domainuser.ID
	ExpiresAt time.Time
}

// SessionStore keeps live sessions server-side.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, id domainuser.ID) error
}

// Service handles registration, login and session resolution.
type Service struct {
	Users      UserRepository
	Sessions   SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
}

type RegisterParams struct {
	Email    string
	Name     string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  domainuser.User
	Token string
}

// Register creates a profile with a derived avatar and opens a session.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	email := domainuser.NormalizeEmail(params.Email)
	name := strings.TrimSpace(params.Name)
	if email == "" {
		return nil, domainuser.ErrEmailRequired
	}
	if utf8.RuneCountInString(params.Password) < 8 {
		return nil, ErrPasswordTooShort
	}
	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return nil, domainuser.ErrEmailTaken
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := domainuser.User{
		ID:           domainuser.ID(uuid.NewString()),
		Name:         name,
		Email:        email,
		AvatarURL:    avatarURL(name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	token, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(user.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user authenticated", "user_id", user.ID)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Logout terminates the session for the token, if any.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, token)
}

// ResolveToken returns the user behind a live session token.
func (s *Service) ResolveToken(ctx context.Context, token string) (domainuser.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domainuser.User{}, ErrSessionNotFound
	}
	session, err := s.Sessions.Get(ctx, token)
	if err != nil {
		return domainuser.User{}, err
	}
	if !session.ExpiresAt.IsZero() && session.ExpiresAt.Before(time.Now()) {
		_ = s.Sessions.Delete(ctx, token)
		return domainuser.User{}, ErrSessionNotFound
	}
	user, err := s.Users.ByID(ctx, session.UserID)
	if err != nil {
		_ = s.Sessions.Delete(ctx, token)
		if errors.Is(err, domainuser.ErrNotFound) {
			return domainuser.User{}, ErrSessionNotFound
		}
		return domainuser.User{}, err
	}
	return user, nil
}

// DeleteAccount removes the profile and all live sessions. Item, room and
// message cleanup runs through the cleanup hooks registered by the caller.
func (s *Service) DeleteAccount(ctx context.Context, id domainuser.ID, cleanup ...func(context.Context, domainuser.ID) error) error {
	for _, fn := range cleanup {
		if err := fn(ctx, id); err != nil && s.Logger != nil {
			// best-effort teardown, keep going
			s.Logger.Warn("account cleanup step failed", "user_id", id, "error", err)
		}
	}
	if err := s.Sessions.DeleteByUser(ctx, id); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("account deleted", "user_id", id)
	}
	return nil
}

func (s *Service) issueSession(ctx context.Context, userID domainuser.ID) (string, error) {
	token, err := s.Tokens.NewToken()
	if err != nil {
		return "", err
	}
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	session := Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

func avatarURL(name string) string {
	if name == "" {
		name = "?"
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random&color=fff&size=150"
}
