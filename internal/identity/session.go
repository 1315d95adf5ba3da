package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/balkashynov/doit/internal/store"
)

// SessionResolver checks the session cookie, then the bearer header, and
// falls back to a guest id
type SessionResolver struct {
	sessions store.Sessions
	now      func() time.Time
}

func NewSessionResolver(sessions store.Sessions) *SessionResolver {
	return &SessionResolver{
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionResolver) Resolve(r *http.Request) (*Identity, error) {
	if token := SessionToken(r); token != "" {
		session, err := s.sessions.GetSession(r.Context(), token)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("lookup session: %w", err)
		case !session.Expired(s.now()):
			return &Identity{Kind: KindUser, Scope: session.UserID, SessionToken: token}, nil
		}
		// an expired row stays in place until a sweep removes it
	}

	if c, err := r.Cookie(GuestCookie); err == nil && strings.HasPrefix(c.Value, "guest_") {
		return &Identity{Kind: KindGuest, Scope: c.Value}, nil
	}
	return &Identity{Kind: KindGuest, Scope: NewID("guest_"), NewGuest: true}, nil
}

// SessionToken returns the token from the session cookie or bearer header
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return bearerToken(r)
}
