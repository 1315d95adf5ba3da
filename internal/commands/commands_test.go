package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/doit/internal/config"
	"github.com/balkashynov/doit/internal/models"
)

func useConfig(t *testing.T, mutate func(*config.Config)) {
	t.Helper()
	c := config.DefaultConfig()
	c.Store.DSN = filepath.Join(t.TempDir(), "doit.db")
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, c.Validate())

	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestRenderTasks(t *testing.T) {
	now := time.Now()
	tasks := []models.Task{
		{ID: "11111111-aaaa", Title: "Buy milk", Section: models.SectionToday, CreatedAt: now},
		{ID: "22222222-bbbb", Title: "File taxes", Section: models.SectionLater, Completed: true, CreatedAt: now},
	}

	var out bytes.Buffer
	renderTasks(&out, tasks, models.LaterSections)

	s := out.String()
	assert.Contains(t, s, "2 tasks")
	assert.Contains(t, s, "TODAY")
	assert.Contains(t, s, "LATER")
	assert.NotContains(t, s, "TOMORROW")
	assert.Contains(t, s, "Buy milk")
	assert.Contains(t, s, "11111111")

	out.Reset()
	renderTasks(&out, nil, models.LaterSections)
	assert.Contains(t, out.String(), "No tasks found.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 60))

	long := strings.Repeat("ab", 40)
	got := truncate(long, 60)
	assert.Len(t, []rune(got), 60)
	assert.True(t, strings.HasSuffix(got, "..."))

	emoji := strings.Repeat("🎉", 59) + "日本"
	got = truncate(emoji, 60)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("🎉", 57)+"...", got)

	assert.Equal(t, emoji[:len(emoji)-len("本")], truncate(emoji[:len(emoji)-len("本")], 60))
}

func TestBuildServer_NoneMode(t *testing.T) {
	useConfig(t, nil)
	ctx := context.Background()

	st, err := openStore(ctx)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(ctx))

	srv, err := buildServer(ctx, st)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/personal", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildServer_SessionModeWithHappy(t *testing.T) {
	useConfig(t, func(c *config.Config) {
		c.Auth.Mode = config.AuthSession
		c.Auth.ExchangeURL = "http://127.0.0.1:1/session-data"
		c.Auth.CookieSecure = false
		c.Happy.Enabled = true
	})
	ctx := context.Background()

	st, err := openStore(ctx)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(ctx))

	srv, err := buildServer(ctx, st)
	require.NoError(t, err)
	assert.NotNil(t, srv.Runner)
	assert.Equal(t, http.SameSiteLaxMode, srv.Cookies.SameSite)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())
}
