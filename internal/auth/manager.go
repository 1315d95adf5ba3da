// Package auth implements the session lifecycle: a provider exchange turns a
// one-time code into a user and a session, logout revokes it, and an optional
// sweeper deletes expired rows.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/balkashynov/doit/internal/identity"
	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

// DefaultSessionTTL is how long a login lasts
const DefaultSessionTTL = 7 * 24 * time.Hour

// Accounts is the slice of the store the manager needs
type Accounts interface {
	store.Users
	store.Sessions
}

// Manager runs login, me and logout
type Manager struct {
	accounts Accounts
	provider Provider
	ttl      time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewManager(accounts Accounts, provider Provider, ttl time.Duration, log *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		accounts: accounts,
		provider: provider,
		ttl:      ttl,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TTL returns the session lifetime
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login exchanges code with the provider, upserts the user by email and
// opens a session. A provider token seen before keeps its row and gets a
// fresh expiry.
func (m *Manager) Login(ctx context.Context, code string) (*models.User, *models.Session, error) {
	if code == "" {
		return nil, nil, ErrInvalidSession
	}

	ident, err := m.provider.Exchange(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	now := m.now()
	user, err := m.accounts.UpsertUserByEmail(ctx, &models.User{
		ID:        identity.NewID("user_"),
		Email:     ident.Email,
		Name:      ident.Name,
		Picture:   ident.Picture,
		CreatedAt: now,
	})
	if err != nil {
		return nil, nil, err
	}

	token := ident.SessionToken
	if token == "" {
		token = uuid.NewString()
	}
	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.accounts.UpsertSession(ctx, session); err != nil {
		return nil, nil, err
	}

	m.log.Info("user logged in", zap.String("user_id", user.ID), zap.Time("expires_at", session.ExpiresAt))
	return user, session, nil
}

// Me returns the authenticated user behind id
func (m *Manager) Me(ctx context.Context, id *identity.Identity) (*models.User, error) {
	if id == nil || !id.Authenticated() {
		return nil, identity.ErrUnauthenticated
	}
	// bearer identities come from Supabase and have no local user row
	if id.SessionToken == "" {
		return &models.User{ID: id.Scope, Email: id.Email}, nil
	}

	user, err := m.accounts.GetUser(ctx, id.Scope)
	if errors.Is(err, store.ErrNotFound) {
		return nil, identity.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Logout deletes the session row for token, if there is one
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.accounts.DeleteSession(ctx, token)
}
