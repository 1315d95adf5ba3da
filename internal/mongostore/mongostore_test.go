package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

func TestTaskDoc_KeepsSharedScope(t *testing.T) {
	doc := taskDoc(&models.Task{ID: "t1", Title: "x", Profile: models.ProfileWork, Section: models.SectionLater})

	fields := make(map[string]interface{}, len(doc))
	for _, e := range doc {
		fields[e.Key] = e.Value
	}
	v, ok := fields["user_id"]
	require.True(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, models.SectionLater, fields["section"])
}

func TestUpsertDoc_SplitsColumns(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	update, err := upsertDoc(models.DefaultSettings("alice", now), []string{models.ColTheme})
	require.NoError(t, err)
	require.Len(t, update, 2)

	assert.Equal(t, "$set", update[0].Key)
	set := update[0].Value.(bson.D)
	require.Len(t, set, 1)
	assert.Equal(t, models.ColTheme, set[0].Key)

	assert.Equal(t, "$setOnInsert", update[1].Key)
	var keys []string
	for _, e := range update[1].Value.(bson.D) {
		keys = append(keys, e.Key)
	}
	assert.ElementsMatch(t, []string{"user_id", "dark_mode", "updated_at"}, keys)

	update, err = upsertDoc(models.DefaultSettings("alice", now), nil)
	require.NoError(t, err)
	require.Len(t, update, 1)
	assert.Equal(t, "$setOnInsert", update[0].Key)
}

// newLiveStore connects to DOIT_TEST_MONGO_URI using a throwaway database
func newLiveStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("DOIT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("DOIT_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	s, err := Open(ctx, uri, "doit_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		s.Close()
	})
	return s
}

func TestLive_TaskLifecycle(t *testing.T) {
	s := newLiveStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	for i, id := range []string{"a", "b"} {
		require.NoError(t, s.CreateTask(ctx, &models.Task{
			ID: id, UserID: "", Title: id, Profile: models.ProfilePersonal,
			Section: models.SectionToday, CreatedAt: now.Add(time.Duration(i) * time.Second), UpdatedAt: now,
		}))
	}

	tasks, err := s.ListTasks(ctx, "", models.ProfilePersonal)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].ID)

	done := true
	task, err := s.UpdateTask(ctx, "", "a", models.TaskPatch{Completed: &done}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, task.Completed)

	_, err = s.UpdateTask(ctx, "someone", "a", models.TaskPatch{Completed: &done}, now)
	assert.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.ClearCompleted(ctx, "", models.ProfilePersonal)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.ErrorIs(t, s.DeleteTask(ctx, "", "a"), store.ErrNotFound)
	require.NoError(t, s.DeleteTask(ctx, "", "b"))
}

func TestLive_UserUpsertKeepsID(t *testing.T) {
	s := newLiveStore(t)
	ctx := context.Background()

	first, err := s.UpsertUserByEmail(ctx, &models.User{ID: "user_1", Email: "a@example.com", Name: "Ann", CreatedAt: time.Now()})
	require.NoError(t, err)
	second, err := s.UpsertUserByEmail(ctx, &models.User{ID: "user_2", Email: "a@example.com", Name: "Ann B"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ann B", second.Name)

	count, err := s.db.Collection(colUsers).CountDocuments(ctx, bson.D{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLive_SettingsPartialUpsert(t *testing.T) {
	s := newLiveStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, s.UpsertSettings(ctx, models.DefaultSettings("alice", now)))

	dark := models.DefaultSettings("alice", now)
	dark.DarkMode = "dark"
	require.NoError(t, s.UpsertSettings(ctx, dark, models.ColDarkMode))

	blue := models.DefaultSettings("alice", now)
	blue.Theme = "blue"
	require.NoError(t, s.UpsertSettings(ctx, blue, models.ColTheme))

	got, err := s.GetSettings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "blue", got.Theme)
	assert.Equal(t, "dark", got.DarkMode)
}

func TestLive_SessionUpsertKeepsOwner(t *testing.T) {
	s := newLiveStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, s.UpsertSession(ctx, &models.Session{Token: "tok", UserID: "user_1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}))
	require.NoError(t, s.UpsertSession(ctx, &models.Session{Token: "tok", UserID: "user_2", ExpiresAt: now.Add(2 * time.Hour), CreatedAt: now}))

	got, err := s.GetSession(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "user_1", got.UserID)
	assert.True(t, got.ExpiresAt.Equal(now.Add(2*time.Hour)))
}
