package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// GoogleConfig holds the OAuth client registration
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleProvider treats the exchange code as a Google authorization code
type GoogleProvider struct {
	oauth *oauth2.Config
	opts  []option.ClientOption
}

func NewGoogleProvider(cfg GoogleConfig, opts ...option.ClientOption) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{oauth2api.UserinfoEmailScope, oauth2api.UserinfoProfileScope},
		},
		opts: opts,
	}
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*ProviderIdentity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("google code exchange: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, p.oauth.TokenSource(ctx, token))
	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, p.opts...)
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, ErrInvalidSession
	}

	return &ProviderIdentity{
		ID:      info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
