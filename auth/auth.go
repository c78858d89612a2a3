// Package auth handles account registration, login sessions, and request
// identification.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rudra/model"
	"rudra/storage"
)

// SessionCookie is the cookie browsers use to carry the session token.
// Programmatic clients send the same token as a Bearer header instead.
const SessionCookie = "rudra_session"

const sessionTTL = 30 * 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthorized       = errors.New("unauthorized")
)

type Service struct {
	store *storage.Store
}

func NewService(store *storage.Store) *Service {
	return &Service{store: store}
}

// Register creates an account. The password is stored as a bcrypt hash only.
func (s *Service) Register(name, email, password string) (model.Identity, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return model.Identity{}, ErrInvalidCredentials
	}

	if _, err := s.store.GetUserByEmail(email); err == nil {
		return model.Identity{}, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return model.Identity{}, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := storage.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(user); err != nil {
		return model.Identity{}, err
	}

	return model.Identity{ID: user.ID, Name: user.Name}, nil
}

// Login verifies credentials and opens a new session. The returned token is
// valid for 30 days.
func (s *Service) Login(email, password string) (string, model.Identity, error) {
	user, err := s.store.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, storage.ErrNotFound) {
		return "", model.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", model.Identity{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", model.Identity{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := storage.Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(session); err != nil {
		return "", model.Identity{}, err
	}

	return session.Token, model.Identity{ID: user.ID, Name: user.Name}, nil
}

// Logout invalidates a session token. Unknown tokens are not an error.
func (s *Service) Logout(token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(token)
}

// Identify resolves the caller of a request. Expired sessions are deleted on
// sight so they cannot be replayed.
func (s *Service) Identify(r *http.Request) (model.Identity, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return model.Identity{}, ErrUnauthorized
	}

	session, err := s.store.GetSession(token)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Identity{}, ErrUnauthorized
	}
	if err != nil {
		return model.Identity{}, err
	}

	if time.Now().UTC().After(session.ExpiresAt) {
		_ = s.store.DeleteSession(token)
		return model.Identity{}, ErrUnauthorized
	}

	user, err := s.store.GetUserByID(session.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Identity{}, ErrUnauthorized
	}
	if err != nil {
		return model.Identity{}, err
	}

	return model.Identity{ID: user.ID, Name: user.Name}, nil
}

// TokenFromRequest extracts the session token from the Authorization header
// or the session cookie, in that order.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
