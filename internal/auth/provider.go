package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrInvalidSession means the provider rejected the exchange code
var ErrInvalidSession = errors.New("Invalid session")

// ProviderIdentity is what a provider returns for a valid exchange code
type ProviderIdentity struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

// Provider trades a one-time code for the caller's identity
type Provider interface {
	Exchange(ctx context.Context, code string) (*ProviderIdentity, error)
}

// ExchangeProvider calls a session-data endpoint with the code in the
// X-Session-ID header
type ExchangeProvider struct {
	url    string
	client *http.Client
}

func NewExchangeProvider(url string, client *http.Client) *ExchangeProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ExchangeProvider{url: url, client: client}
}

func (p *ExchangeProvider) Exchange(ctx context.Context, code string) (*ProviderIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build exchange request: %w", err)
	}
	req.Header.Set("X-Session-ID", code)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrInvalidSession
	}

	var ident ProviderIdentity
	if err := json.NewDecoder(resp.Body).Decode(&ident); err != nil {
		return nil, fmt.Errorf("decode session data: %w", err)
	}
	if ident.Email == "" {
		return nil, ErrInvalidSession
	}
	return &ident, nil
}
