package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/balkashynov/doit/internal/db"
	"github.com/balkashynov/doit/internal/identity"
	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

func newExchangeServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("X-Session-ID") {
		case "good":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(ProviderIdentity{
				ID:           "ext-1",
				Email:        "ann@example.com",
				Name:         "Ann",
				Picture:      "https://pics/ann.png",
				SessionToken: "tok_from_provider",
			})
		case "renamed":
			_ = json.NewEncoder(w).Encode(ProviderIdentity{Email: "ann@example.com", Name: "Ann B"})
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExchangeProvider(t *testing.T) {
	srv := newExchangeServer(t)
	p := NewExchangeProvider(srv.URL, srv.Client())

	ident, err := p.Exchange(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", ident.Email)
	assert.Equal(t, "tok_from_provider", ident.SessionToken)

	_, err = p.Exchange(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestExchangeProvider_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewExchangeProvider(url, nil).Exchange(context.Background(), "good")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidSession))
}

func newManager(t *testing.T, p Provider) (*Manager, *db.DB) {
	t.Helper()
	d, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return NewManager(d, p, 0, zap.NewNop()), d
}

func TestManager_LoginCreatesUserAndSession(t *testing.T) {
	srv := newExchangeServer(t)
	m, d := newManager(t, NewExchangeProvider(srv.URL, srv.Client()))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	user, session, err := m.Login(ctx, "good")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.ID, "user_"))
	assert.Equal(t, "tok_from_provider", session.Token)
	assert.True(t, session.ExpiresAt.Equal(now.Add(7*24*time.Hour)))

	stored, err := d.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)

	// second login keeps the id and refreshes the profile
	again, second, err := m.Login(ctx, "renamed")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "Ann B", again.Name)
	assert.NotEqual(t, session.Token, second.Token)
}

func TestManager_LoginRepeatedCodeRefreshesSession(t *testing.T) {
	srv := newExchangeServer(t)
	m, d := newManager(t, NewExchangeProvider(srv.URL, srv.Client()))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	user, first, err := m.Login(ctx, "good")
	require.NoError(t, err)

	now = now.Add(time.Hour)
	again, second, err := m.Login(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, first.Token, second.Token)

	stored, err := d.GetSession(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
	assert.True(t, stored.ExpiresAt.Equal(now.Add(DefaultSessionTTL)))
}

type failingSessions struct {
	Accounts
}

func (failingSessions) UpsertSession(context.Context, *models.Session) error {
	return errors.New("upsert session: disk full")
}

func TestManager_LoginStoreErrorIsNotRewrapped(t *testing.T) {
	srv := newExchangeServer(t)
	_, d := newManager(t, nil)
	m := NewManager(failingSessions{Accounts: d}, NewExchangeProvider(srv.URL, srv.Client()), 0, zap.NewNop())

	_, _, err := m.Login(context.Background(), "good")
	assert.EqualError(t, err, "upsert session: disk full")
}

func TestManager_LoginRejected(t *testing.T) {
	srv := newExchangeServer(t)
	m, _ := newManager(t, NewExchangeProvider(srv.URL, srv.Client()))

	_, _, err := m.Login(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, _, err = m.Login(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestManager_MeAndLogout(t *testing.T) {
	srv := newExchangeServer(t)
	m, d := newManager(t, NewExchangeProvider(srv.URL, srv.Client()))
	ctx := context.Background()

	user, session, err := m.Login(ctx, "good")
	require.NoError(t, err)

	me, err := m.Me(ctx, &identity.Identity{Kind: identity.KindUser, Scope: user.ID, SessionToken: session.Token})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", me.Email)

	_, err = m.Me(ctx, &identity.Identity{Kind: identity.KindGuest, Scope: "guest_0123456789ab"})
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)

	bearer, err := m.Me(ctx, &identity.Identity{Kind: identity.KindUser, Scope: "uuid-1", Email: "x@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", bearer.ID)

	require.NoError(t, m.Logout(ctx, session.Token))
	_, err = d.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, m.Logout(ctx, session.Token))
	require.NoError(t, m.Logout(ctx, ""))
}

func TestGoogleProvider(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "auth-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/oauth2/v2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"g-1","email":"gina@example.com","name":"Gina","picture":"https://pics/g.png"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewGoogleProvider(GoogleConfig{ClientID: "id", ClientSecret: "secret"}, option.WithEndpoint(srv.URL+"/"))
	p.oauth.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}

	ident, err := p.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "gina@example.com", ident.Email)
	assert.Equal(t, "Gina", ident.Name)

	_, err = p.Exchange(context.Background(), "wrong")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

type countingSessions struct {
	store.Sessions
	calls atomic.Int32
}

func (c *countingSessions) DeleteExpiredSessions(context.Context, time.Time) (int64, error) {
	c.calls.Add(1)
	return 1, nil
}

func TestSweeper_RunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)

	sessions := &countingSessions{}
	s := NewSweeper(sessions, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return sessions.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestSweeper_DisabledReturnsImmediately(t *testing.T) {
	s := NewSweeper(&countingSessions{}, 0, zap.NewNop())
	require.NoError(t, s.Run(context.Background()))
}

func TestSweeper_DeletesOnlyExpired(t *testing.T) {
	d, err := db.OpenMemory()
	require.NoError(t, err)
	defer d.Close()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, d.UpsertSession(ctx, &models.Session{Token: "old", UserID: "u", ExpiresAt: now.Add(-time.Minute), CreatedAt: now}))
	require.NoError(t, d.UpsertSession(ctx, &models.Session{Token: "new", UserID: "u", ExpiresAt: now.Add(time.Minute), CreatedAt: now}))

	s := NewSweeper(d, time.Hour, zap.NewNop())
	s.now = func() time.Time { return now }

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = d.GetSession(ctx, "new")
	assert.NoError(t, err)
}
