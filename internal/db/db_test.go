package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func seedTask(t *testing.T, d *DB, id, scope string, profile models.Profile, completed bool, created time.Time) {
	t.Helper()
	require.NoError(t, d.CreateTask(context.Background(), &models.Task{
		ID:        id,
		UserID:    scope,
		Title:     "task " + id,
		Profile:   profile,
		Section:   models.SectionToday,
		Completed: completed,
		CreatedAt: created,
		UpdatedAt: created,
	}))
}

func TestTasks_ListScopedAndOrdered(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	seedTask(t, d, "b", "alice", models.ProfilePersonal, false, base.Add(time.Minute))
	seedTask(t, d, "a", "alice", models.ProfilePersonal, false, base)
	seedTask(t, d, "c", "alice", models.ProfileWork, false, base)
	seedTask(t, d, "d", "bob", models.ProfilePersonal, false, base)

	tasks, err := d.ListTasks(ctx, "alice", models.ProfilePersonal)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "b", tasks[1].ID)

	all, err := d.ListAllTasks(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	empty, err := d.ListTasks(ctx, "nobody", models.ProfileWork)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTasks_UpdateRequiresMatchingScope(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	seedTask(t, d, "t1", "alice", models.ProfilePersonal, false, created)

	done := true
	later := created.Add(time.Hour)

	_, err := d.UpdateTask(ctx, "bob", "t1", models.TaskPatch{Completed: &done}, later)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = d.UpdateTask(ctx, "alice", "missing", models.TaskPatch{Completed: &done}, later)
	assert.ErrorIs(t, err, store.ErrNotFound)

	task, err := d.UpdateTask(ctx, "alice", "t1", models.TaskPatch{Completed: &done}, later)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, "task t1", task.Title)
	assert.True(t, task.UpdatedAt.Equal(later))
	assert.True(t, task.CreatedAt.Equal(created))
}

func TestTasks_DeleteAndClearCompleted(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedTask(t, d, "p1", "alice", models.ProfilePersonal, true, now)
	seedTask(t, d, "p2", "alice", models.ProfilePersonal, true, now)
	seedTask(t, d, "p3", "alice", models.ProfilePersonal, false, now)
	seedTask(t, d, "w1", "alice", models.ProfileWork, true, now)
	seedTask(t, d, "o1", "bob", models.ProfilePersonal, true, now)

	assert.ErrorIs(t, d.DeleteTask(ctx, "bob", "p3"), store.ErrNotFound)
	require.NoError(t, d.DeleteTask(ctx, "alice", "p3"))
	assert.ErrorIs(t, d.DeleteTask(ctx, "alice", "p3"), store.ErrNotFound)

	n, err := d.ClearCompleted(ctx, "alice", models.ProfilePersonal)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	work, err := d.ListTasks(ctx, "alice", models.ProfileWork)
	require.NoError(t, err)
	assert.Len(t, work, 1)

	other, err := d.ListTasks(ctx, "bob", models.ProfilePersonal)
	require.NoError(t, err)
	assert.Len(t, other, 1)

	n, err = d.ClearCompleted(ctx, "alice", models.ProfilePersonal)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSessions_ExpiredRowsSurviveUntilSwept(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, d.UpsertSession(ctx, &models.Session{Token: "old", UserID: "u1", ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-8 * 24 * time.Hour)}))
	require.NoError(t, d.UpsertSession(ctx, &models.Session{Token: "new", UserID: "u1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}))

	old, err := d.GetSession(ctx, "old")
	require.NoError(t, err)
	assert.True(t, old.Expired(now))

	n, err := d.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = d.GetSession(ctx, "old")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = d.GetSession(ctx, "new")
	assert.NoError(t, err)

	require.NoError(t, d.DeleteSession(ctx, "new"))
	require.NoError(t, d.DeleteSession(ctx, "new"))
}

func TestSessions_UpsertRefreshesExpiry(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, d.UpsertSession(ctx, &models.Session{Token: "tok", UserID: "u1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}))
	require.NoError(t, d.UpsertSession(ctx, &models.Session{Token: "tok", UserID: "u2", ExpiresAt: now.Add(48 * time.Hour), CreatedAt: now.Add(time.Minute)}))

	got, err := d.GetSession(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.ExpiresAt.Equal(now.Add(48*time.Hour)))
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestUsers_UpsertByEmailKeepsID(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	first, err := d.UpsertUserByEmail(ctx, &models.User{ID: "user_1", Email: "a@example.com", Name: "Ann", CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, "user_1", first.ID)

	second, err := d.UpsertUserByEmail(ctx, &models.User{ID: "user_2", Email: "a@example.com", Name: "Ann B", Picture: "http://pic"})
	require.NoError(t, err)
	assert.Equal(t, "user_1", second.ID)
	assert.Equal(t, "Ann B", second.Name)

	got, err := d.GetUser(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "http://pic", got.Picture)

	_, err = d.GetUser(ctx, "user_2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSettings_Upsert(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := d.GetSettings(ctx, "alice")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, d.UpsertSettings(ctx, models.DefaultSettings("alice", now)))
	s, err := d.GetSettings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTheme, s.Theme)

	fresh := models.DefaultSettings("alice", now)
	fresh.Theme = "red"
	require.NoError(t, d.UpsertSettings(ctx, fresh))
	s, err = d.GetSettings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTheme, s.Theme, "insert-only upsert must leave an existing record alone")

	s.Theme = "blue"
	s.DarkMode = "dark"
	require.NoError(t, d.UpsertSettings(ctx, s, models.ColTheme))
	s, err = d.GetSettings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "blue", s.Theme)
	assert.Equal(t, models.DefaultDarkMode, s.DarkMode)
}

func TestWins_ListNewestFirstAndCount(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"w1", "w2", "w3"} {
		require.NoError(t, d.CreateWin(ctx, &models.Win{ID: id, UserID: "alice", Task: id, CompletedAt: base.Add(time.Duration(i) * 24 * time.Hour)}))
	}
	require.NoError(t, d.CreateWin(ctx, &models.Win{ID: "x", UserID: "bob", Task: "x", CompletedAt: base}))

	wins, err := d.ListWins(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, wins, 3)
	assert.Equal(t, "w3", wins[0].ID)

	n, err := d.CountWins(ctx, "alice", base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestHappy_SettingsAndEmailLog(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	require.NoError(t, d.UpsertHappySettings(ctx, &models.HappySettings{UserID: "alice", Enabled: true, Email: "a@example.com"}))
	require.NoError(t, d.UpsertHappySettings(ctx, &models.HappySettings{UserID: "bob", Enabled: false, Email: "b@example.com"}))

	users, err := d.ListHappyUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].UserID)

	require.NoError(t, d.UpsertHappySettings(ctx, &models.HappySettings{UserID: "alice", Enabled: false}, models.ColEnabled))
	alice, err := d.GetHappySettings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", alice.Email)
	users, err = d.ListHappyUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	sent, err := d.EmailSentSince(ctx, "alice", "morning", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, sent)

	require.NoError(t, d.LogEmail(ctx, &models.EmailLog{ID: "e1", UserID: "alice", JobType: "morning", Subject: "hi", SentAt: now}))
	sent, err = d.EmailSentSince(ctx, "alice", "morning", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = d.EmailSentSince(ctx, "alice", "morning", now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, sent)
}
