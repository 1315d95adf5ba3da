// Package store defines the persistence contract shared by the sqlite, postgres
// and mongo backends.
//
// Every operation on scoped data takes the scope identifier (user id, guest id,
// or "" for the shared list) and filters on it together with the record id. A
// write that matches nothing returns ErrNotFound, whether the record is missing
// or belongs to another scope.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/balkashynov/doit/internal/models"
)

// ErrNotFound is returned when no record matches the id and scope
var ErrNotFound = errors.New("not found")

// Tasks persists task records
type Tasks interface {
	ListTasks(ctx context.Context, scope string, profile models.Profile) ([]models.Task, error)
	ListAllTasks(ctx context.Context, scope string) ([]models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, scope, id string, patch models.TaskPatch, now time.Time) (*models.Task, error)
	DeleteTask(ctx context.Context, scope, id string) error
	ClearCompleted(ctx context.Context, scope string, profile models.Profile) (int64, error)
}

// Sessions persists login sessions. Expired rows are only removed by
// DeleteExpiredSessions.
type Sessions interface {
	// UpsertSession inserts session, or refreshes expires_at when the token
	// already exists. The stored user_id and created_at are kept.
	UpsertSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Users persists accounts created by the login exchange
type Users interface {
	// UpsertUserByEmail inserts user if the email is new, otherwise refreshes
	// name and picture and returns the stored record (with its original id).
	UpsertUserByEmail(ctx context.Context, user *models.User) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Settings persists one settings record per scope
type Settings interface {
	GetSettings(ctx context.Context, scope string) (*models.Settings, error)
	// UpsertSettings inserts settings when the scope has none. Otherwise only
	// columns are overwritten; with no columns an existing record is left as is.
	UpsertSettings(ctx context.Context, settings *models.Settings, columns ...string) error
}

// Wins persists the append-only wins log
type Wins interface {
	CreateWin(ctx context.Context, win *models.Win) error
	ListWins(ctx context.Context, scope string) ([]models.Win, error)
	CountWins(ctx context.Context, scope string, since time.Time) (int64, error)
}

// Happy persists accountability-email settings and the sent log
type Happy interface {
	ListHappyUsers(ctx context.Context) ([]models.HappySettings, error)
	GetHappySettings(ctx context.Context, userID string) (*models.HappySettings, error)
	// UpsertHappySettings follows the same rules as UpsertSettings
	UpsertHappySettings(ctx context.Context, settings *models.HappySettings, columns ...string) error
	EmailSentSince(ctx context.Context, userID, jobType string, since time.Time) (bool, error)
	LogEmail(ctx context.Context, entry *models.EmailLog) error
}

// Store is the full persistence client handed to services at startup
type Store interface {
	Tasks
	Sessions
	Users
	Settings
	Wins
	Happy

	// Migrate creates or upgrades the backend schema
	Migrate(ctx context.Context) error
	Close() error
}
