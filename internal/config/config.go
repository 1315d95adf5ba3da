// Package config loads doit's settings from defaults, an optional YAML file
// and DOIT_-prefixed environment variables, in that order of precedence.
package config

import (
	"fmt"
	"time"

	"github.com/balkashynov/doit/internal/models"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Auth modes
const (
	AuthNone    = "none"
	AuthBearer  = "bearer"
	AuthSession = "session"
)

// Session-mode login providers
const (
	ProviderExchange = "exchange"
	ProviderGoogle   = "google"
)

// Config is the full doit configuration
type Config struct {
	Addr     string         `yaml:"addr" mapstructure:"addr"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Auth     AuthConfig     `yaml:"auth" mapstructure:"auth"`
	Supabase SupabaseConfig `yaml:"supabase" mapstructure:"supabase"`
	CORS     CORSConfig     `yaml:"cors" mapstructure:"cors"`
	Happy    HappyConfig    `yaml:"happy" mapstructure:"happy"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

type StoreConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	DSN      string `yaml:"dsn" mapstructure:"dsn"`
	Database string `yaml:"database" mapstructure:"database"` // mongo only
	RLS      bool   `yaml:"rls" mapstructure:"rls"`           // postgres only
}

type AuthConfig struct {
	Mode          string        `yaml:"mode" mapstructure:"mode"`
	Sections      []string      `yaml:"sections" mapstructure:"sections"`
	SessionTTL    time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`
	GuestTTL      time.Duration `yaml:"guest_ttl" mapstructure:"guest_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
	CookieSecure  bool          `yaml:"cookie_secure" mapstructure:"cookie_secure"`
	Provider      string        `yaml:"provider" mapstructure:"provider"`
	ExchangeURL   string        `yaml:"exchange_url" mapstructure:"exchange_url"`
	Google        GoogleConfig  `yaml:"google" mapstructure:"google"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	RedirectURL  string `yaml:"redirect_url" mapstructure:"redirect_url"`
}

type SupabaseConfig struct {
	URL       string `yaml:"url" mapstructure:"url"`
	AnonKey   string `yaml:"anon_key" mapstructure:"anon_key"`
	JWTSecret string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins" mapstructure:"origins"`
}

type HappyConfig struct {
	Enabled      bool        `yaml:"enabled" mapstructure:"enabled"`
	GeminiAPIKey string      `yaml:"gemini_api_key" mapstructure:"gemini_api_key"`
	Model        string      `yaml:"model" mapstructure:"model"`
	Gmail        GmailConfig `yaml:"gmail" mapstructure:"gmail"`
	FromEmail    string      `yaml:"from_email" mapstructure:"from_email"`
	FromName     string      `yaml:"from_name" mapstructure:"from_name"`
	AppURL       string      `yaml:"app_url" mapstructure:"app_url"`
}

type GmailConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	RefreshToken string `yaml:"refresh_token" mapstructure:"refresh_token"`
}

// Configured reports whether Gmail credentials are complete
func (g GmailConfig) Configured() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RefreshToken != ""
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Addr: ":8000",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Driver:   DriverSQLite,
			Database: "doit",
		},
		Auth: AuthConfig{
			Mode:         AuthNone,
			SessionTTL:   7 * 24 * time.Hour,
			GuestTTL:     365 * 24 * time.Hour,
			CookieSecure: true,
			Provider:     ProviderExchange,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
		Happy: HappyConfig{
			FromName: "Happy",
		},
	}
}

// Sections returns the section enum for the configured auth mode
func (c *Config) Sections() models.SectionSet {
	if len(c.Auth.Sections) > 0 {
		set := make(models.SectionSet, len(c.Auth.Sections))
		for i, s := range c.Auth.Sections {
			set[i] = models.Section(s)
		}
		return set
	}
	if c.Auth.Mode == AuthNone {
		return models.LaterSections
	}
	return models.SomedaySections
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
	case DriverPostgres, DriverMongo:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the %s driver", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store.driver %q (want sqlite, postgres or mongo)", c.Store.Driver)
	}
	if c.Store.RLS && c.Store.Driver != DriverPostgres {
		return fmt.Errorf("store.rls is only supported by the postgres driver")
	}

	switch c.Auth.Mode {
	case AuthNone:
	case AuthBearer:
		if c.Supabase.JWTSecret == "" && c.Supabase.URL == "" {
			return fmt.Errorf("bearer auth needs supabase.jwt_secret or supabase.url")
		}
	case AuthSession:
		switch c.Auth.Provider {
		case ProviderExchange:
			if c.Auth.ExchangeURL == "" {
				return fmt.Errorf("auth.exchange_url is required for the exchange provider")
			}
		case ProviderGoogle:
			if c.Auth.Google.ClientID == "" || c.Auth.Google.ClientSecret == "" {
				return fmt.Errorf("auth.google.client_id and client_secret are required for the google provider")
			}
		default:
			return fmt.Errorf("unknown auth.provider %q (want exchange or google)", c.Auth.Provider)
		}
	default:
		return fmt.Errorf("unknown auth.mode %q (want none, bearer or session)", c.Auth.Mode)
	}

	for _, s := range c.Auth.Sections {
		switch models.Section(s) {
		case models.SectionToday, models.SectionTomorrow, models.SectionLater, models.SectionSomeday:
		default:
			return fmt.Errorf("unknown section %q in auth.sections", s)
		}
	}
	if c.Auth.SweepInterval < 0 {
		return fmt.Errorf("auth.sweep_interval must not be negative")
	}
	return nil
}
