package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/doit/internal/models"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, AuthNone, cfg.Auth.Mode)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 365*24*time.Hour, cfg.Auth.GuestTTL)
	assert.Zero(t, cfg.Auth.SweepInterval)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
store:
  driver: postgres
  dsn: postgres://localhost/doit
  rls: true
auth:
  mode: session
  exchange_url: https://auth.example/session-data
  sweep_interval: 1h
`), 0o644))

	t.Setenv("DOIT_ADDR", ":9100")
	t.Setenv("DOIT_AUTH_SESSION_TTL", "48h")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Addr)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.True(t, cfg.Store.RLS)
	assert.Equal(t, AuthSession, cfg.Auth.Mode)
	assert.Equal(t, time.Hour, cfg.Auth.SweepInterval)
	assert.Equal(t, 48*time.Hour, cfg.Auth.SessionTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "redis" }},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }},
		{"rls on sqlite", func(c *Config) { c.Store.RLS = true }},
		{"unknown mode", func(c *Config) { c.Auth.Mode = "oauth" }},
		{"bearer without supabase", func(c *Config) { c.Auth.Mode = AuthBearer }},
		{"session without exchange url", func(c *Config) { c.Auth.Mode = AuthSession }},
		{"google without client", func(c *Config) {
			c.Auth.Mode = AuthSession
			c.Auth.Provider = ProviderGoogle
		}},
		{"bad section", func(c *Config) { c.Auth.Sections = []string{"today", "never"} }},
		{"negative sweep", func(c *Config) { c.Auth.SweepInterval = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSections(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, models.LaterSections, cfg.Sections())

	cfg.Auth.Mode = AuthSession
	assert.Equal(t, models.SomedaySections, cfg.Sections())

	cfg.Auth.Sections = []string{"today", "later"}
	assert.Equal(t, models.SectionSet{models.SectionToday, models.SectionLater}, cfg.Sections())
}
