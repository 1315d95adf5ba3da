package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

// sessions and users are looked up before a scope is known, so they never
// go through scoped

func (s *Store) UpsertSession(ctx context.Context, session *models.Session) error {
	q := s.sq.Insert("user_sessions").
		Columns("session_token", "user_id", "expires_at", "created_at").
		Values(session.Token, session.UserID, session.ExpiresAt, session.CreatedAt).
		Suffix(onConflict("session_token", []string{"expires_at"}))
	if _, err := exec(ctx, s.db, q); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	q := s.sq.Select("session_token", "user_id", "expires_at", "created_at").
		From("user_sessions").
		Where("session_token = ?", token)
	if err := get(ctx, s.db, &session, q); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	q := s.sq.Delete("user_sessions").Where("session_token = ?", token)
	if _, err := exec(ctx, s.db, q); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	q := s.sq.Delete("user_sessions").Where("expires_at <= ?", now)
	n, err := exec(ctx, s.db, q)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}

func (s *Store) UpsertUserByEmail(ctx context.Context, user *models.User) (*models.User, error) {
	q := s.sq.Insert("users").
		Columns("user_id", "email", "name", "picture", "created_at").
		Values(user.ID, user.Email, user.Name, user.Picture, user.CreatedAt).
		Suffix("ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, picture = EXCLUDED.picture " +
			"RETURNING user_id, email, name, picture, created_at")

	var stored models.User
	if err := get(ctx, s.db, &stored, q); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &stored, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	q := s.sq.Select("user_id", "email", "name", "picture", "created_at").
		From("users").
		Where("user_id = ?", id)
	if err := get(ctx, s.db, &user, q); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}
