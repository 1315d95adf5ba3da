// Package identity decides which scope a request belongs to.
//
// Three resolvers exist, one per auth mode: none (a single shared scope),
// bearer (a Supabase JWT is required) and session (a session token if one is
// valid, otherwise a cookie-backed guest id). Guests are never rejected.
package identity

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ErrUnauthenticated is returned when a request carries no usable credentials
var ErrUnauthenticated = errors.New("unauthenticated")

// Kind says how a scope was resolved
type Kind string

const (
	KindAnonymous Kind = "anonymous"
	KindUser      Kind = "user"
	KindGuest     Kind = "guest"
)

// Identity is the resolved owner of a request
type Identity struct {
	Kind  Kind
	Scope string // "" for the shared scope

	Email        string // bearer mode only
	SessionToken string // session mode, when a live session matched

	// NewGuest is set when the guest id was generated for this request and
	// has not been written to a cookie yet
	NewGuest bool
}

// Authenticated reports whether the identity is a logged-in user
func (i *Identity) Authenticated() bool {
	return i.Kind == KindUser
}

// Resolver maps a request to an Identity
type Resolver interface {
	Resolve(r *http.Request) (*Identity, error)
}

// NewID returns prefix followed by 12 random hex characters
func NewID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// bearerToken extracts the token from an Authorization: Bearer header
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Shared resolves every request to the shared scope
type Shared struct{}

func (Shared) Resolve(*http.Request) (*Identity, error) {
	return &Identity{Kind: KindAnonymous}, nil
}
