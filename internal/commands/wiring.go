package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/balkashynov/doit/internal/api"
	"github.com/balkashynov/doit/internal/auth"
	"github.com/balkashynov/doit/internal/config"
	"github.com/balkashynov/doit/internal/db"
	"github.com/balkashynov/doit/internal/happy"
	"github.com/balkashynov/doit/internal/identity"
	"github.com/balkashynov/doit/internal/logging"
	"github.com/balkashynov/doit/internal/mongostore"
	"github.com/balkashynov/doit/internal/pgstore"
	"github.com/balkashynov/doit/internal/service"
	"github.com/balkashynov/doit/internal/store"
)

// openStore connects the configured backend
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pc := pgstore.NewConfig(cfg.Store.DSN)
		pc.RLS = cfg.Store.RLS
		return pgstore.Open(ctx, pc)
	case config.DriverMongo:
		return mongostore.Open(ctx, cfg.Store.DSN, cfg.Store.Database)
	default:
		return db.Open(cfg.Store.DSN)
	}
}

func cookiePolicy() identity.CookiePolicy {
	if !cfg.Auth.CookieSecure {
		// browsers drop SameSite=None cookies without Secure
		return identity.CookiePolicy{Secure: false, SameSite: http.SameSiteLaxMode}
	}
	return identity.DefaultCookiePolicy()
}

func newProvider() auth.Provider {
	if cfg.Auth.Provider == config.ProviderGoogle {
		return auth.NewGoogleProvider(auth.GoogleConfig{
			ClientID:     cfg.Auth.Google.ClientID,
			ClientSecret: cfg.Auth.Google.ClientSecret,
			RedirectURL:  cfg.Auth.Google.RedirectURL,
		})
	}
	return auth.NewExchangeProvider(cfg.Auth.ExchangeURL, nil)
}

// newRunner picks Gemini and Gmail when they are configured, and falls back
// to fixed templates and a log-only mailer otherwise
func newRunner(ctx context.Context, st happy.Store) (*happy.Runner, error) {
	log := logging.Component(logger, "happy")

	var composer happy.Composer = happy.TemplateComposer{}
	if cfg.Happy.GeminiAPIKey != "" {
		c, err := happy.NewGenAIComposer(ctx, cfg.Happy.GeminiAPIKey, cfg.Happy.Model)
		if err != nil {
			return nil, err
		}
		composer = c
	}

	var mailer happy.Mailer = happy.NewLogMailer(log)
	if cfg.Happy.Gmail.Configured() {
		m, err := happy.NewGmailMailer(ctx, happy.GmailConfig{
			ClientID:     cfg.Happy.Gmail.ClientID,
			ClientSecret: cfg.Happy.Gmail.ClientSecret,
			RefreshToken: cfg.Happy.Gmail.RefreshToken,
		}, happy.Sender{
			Name:   cfg.Happy.FromName,
			Email:  cfg.Happy.FromEmail,
			AppURL: cfg.Happy.AppURL,
		})
		if err != nil {
			return nil, err
		}
		mailer = m
	}

	return happy.NewRunner(st, composer, mailer, log), nil
}

// buildServer wires services and the identity resolver for the auth mode
func buildServer(ctx context.Context, st store.Store) (*api.Server, error) {
	deps := api.Deps{
		Mode:     cfg.Auth.Mode,
		Tasks:    service.NewTaskService(st, cfg.Sections(), logging.Component(logger, "tasks")),
		Cookies:  cookiePolicy(),
		GuestTTL: cfg.Auth.GuestTTL,
		Origins:  cfg.CORS.Origins,
		Log:      logging.Component(logger, "http"),
	}

	authLog := logging.Component(logger, "auth")
	switch cfg.Auth.Mode {
	case config.AuthNone:
		deps.Resolver = identity.Shared{}
	case config.AuthBearer:
		verifier := identity.NewSupabaseVerifier(identity.SupabaseConfig{
			URL:       cfg.Supabase.URL,
			AnonKey:   cfg.Supabase.AnonKey,
			JWTSecret: cfg.Supabase.JWTSecret,
		}, nil)
		deps.Resolver = identity.NewBearerResolver(verifier)
		// bearer users never log in here; the manager only answers /auth/me
		deps.Auth = auth.NewManager(st, nil, cfg.Auth.SessionTTL, authLog)
	case config.AuthSession:
		deps.Resolver = identity.NewSessionResolver(st)
		deps.Auth = auth.NewManager(st, newProvider(), cfg.Auth.SessionTTL, authLog)
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}

	if cfg.Auth.Mode != config.AuthNone {
		deps.Settings = service.NewSettingsService(st, logging.Component(logger, "settings"))
		deps.Wins = service.NewWinsService(st)
		deps.Happy = service.NewHappySettingsService(st)

		if cfg.Happy.Enabled {
			runner, err := newRunner(ctx, st)
			if err != nil {
				return nil, err
			}
			deps.Runner = runner
		}
	}

	return api.New(deps), nil
}
