package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Store) CreateUser(user User) error {
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(email string) (User, error) {
	return s.getUser(`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

func (s *Store) GetUserByID(id string) (User, error) {
	return s.getUser(`SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (s *Store) getUser(query, key string) (User, error) {
	var user User
	err := s.db.QueryRow(query, key).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *Store) CreateSession(session Session) error {
	_, err := s.db.Exec(
		`INSERT INTO auth_sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		session.Token, session.UserID, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(token string) (Session, error) {
	var session Session
	err := s.db.QueryRow(
		`SELECT token, user_id, expires_at, created_at FROM auth_sessions WHERE token = ?`,
		token,
	).Scan(&session.Token, &session.UserID, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

func (s *Store) DeleteSession(token string) error {
	if _, err := s.db.Exec(`DELETE FROM auth_sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions removes sessions whose expiry has passed.
func (s *Store) PurgeExpiredSessions(now time.Time) error {
	if _, err := s.db.Exec(`DELETE FROM auth_sessions WHERE expires_at < ?`, now); err != nil {
		return fmt.Errorf("failed to purge sessions: %w", err)
	}
	return nil
}
