package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SupabaseClaims are the claims Supabase puts in its access tokens
type SupabaseClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// SupabaseConfig configures token verification
type SupabaseConfig struct {
	URL       string
	AnonKey   string
	JWTSecret string // when set, tokens are verified locally
}

// SupabaseVerifier checks Supabase access tokens, locally with the project's
// JWT secret or remotely against /auth/v1/user
type SupabaseVerifier struct {
	cfg    SupabaseConfig
	client *http.Client
}

func NewSupabaseVerifier(cfg SupabaseConfig, client *http.Client) *SupabaseVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SupabaseVerifier{cfg: cfg, client: client}
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verify returns the user id and email carried by token
func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (string, string, error) {
	if v.cfg.JWTSecret != "" {
		return v.verifyLocal(token)
	}
	return v.verifyRemote(ctx, token)
}

func (v *SupabaseVerifier) verifyLocal(token string) (string, string, error) {
	var claims SupabaseClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(v.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return "", "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return claims.Subject, claims.Email, nil
}

func (v *SupabaseVerifier) verifyRemote(ctx context.Context, token string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(v.cfg.URL, "/")+"/auth/v1/user", nil)
	if err != nil {
		return "", "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", v.cfg.AnonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("%w: auth server returned %d", ErrUnauthenticated, resp.StatusCode)
	}

	var user supabaseUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", "", fmt.Errorf("%w: decode user: %v", ErrUnauthenticated, err)
	}
	if user.ID == "" {
		return "", "", fmt.Errorf("%w: auth server returned a user without id", ErrUnauthenticated)
	}
	return user.ID, user.Email, nil
}

// Verifier checks a bearer token
type Verifier interface {
	Verify(ctx context.Context, token string) (userID, email string, err error)
}

// BearerResolver requires a verified bearer token on every request
type BearerResolver struct {
	verifier Verifier
}

func NewBearerResolver(v Verifier) *BearerResolver {
	return &BearerResolver{verifier: v}
}

func (b *BearerResolver) Resolve(r *http.Request) (*Identity, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}
	userID, email, err := b.verifier.Verify(r.Context(), token)
	if err != nil {
		return nil, err
	}
	return &Identity{Kind: KindUser, Scope: userID, Email: email}, nil
}
