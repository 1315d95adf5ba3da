package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultFile is read from the working directory when no --config is given
const DefaultFile = "doit.yaml"

// New returns a viper instance with every default registered and DOIT_
// environment overrides enabled
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("DOIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return v
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("addr", d.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("store.database", d.Store.Database)
	v.SetDefault("store.rls", d.Store.RLS)

	v.SetDefault("auth.mode", d.Auth.Mode)
	v.SetDefault("auth.sections", d.Auth.Sections)
	v.SetDefault("auth.session_ttl", d.Auth.SessionTTL)
	v.SetDefault("auth.guest_ttl", d.Auth.GuestTTL)
	v.SetDefault("auth.sweep_interval", d.Auth.SweepInterval)
	v.SetDefault("auth.cookie_secure", d.Auth.CookieSecure)
	v.SetDefault("auth.provider", d.Auth.Provider)
	v.SetDefault("auth.exchange_url", d.Auth.ExchangeURL)
	v.SetDefault("auth.google.client_id", "")
	v.SetDefault("auth.google.client_secret", "")
	v.SetDefault("auth.google.redirect_url", "")

	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.anon_key", "")
	v.SetDefault("supabase.jwt_secret", "")

	v.SetDefault("cors.origins", d.CORS.Origins)

	v.SetDefault("happy.enabled", d.Happy.Enabled)
	v.SetDefault("happy.gemini_api_key", "")
	v.SetDefault("happy.model", "")
	v.SetDefault("happy.gmail.client_id", "")
	v.SetDefault("happy.gmail.client_secret", "")
	v.SetDefault("happy.gmail.refresh_token", "")
	v.SetDefault("happy.from_email", "")
	v.SetDefault("happy.from_name", d.Happy.FromName)
	v.SetDefault("happy.app_url", "")
}

// Load reads path (or ./doit.yaml when path is empty and the file exists)
// into v and decodes the result
func Load(v *viper.Viper, path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) {
				return nil, fmt.Errorf("config file %s not found", path)
			}
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
