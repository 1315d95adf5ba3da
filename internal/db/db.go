package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

// DB is the sqlite-backed store. It is the default backend for local runs and
// the one the test suites run against.
type DB struct {
	conn *gorm.DB
}

var _ store.Store = (*DB)(nil)

// Open sets up the database connection. An empty dsn uses ~/.doit/doit.db.
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		path, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get database path: %w", err)
		}
		// Ensure the directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create doit directory: %w", err)
		}
		dsn = path
	}

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// every pooled connection to :memory: would be its own empty database
	if strings.Contains(dsn, ":memory:") {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return &DB{conn: conn}, nil
}

// OpenMemory opens a fresh in-memory database with the schema applied
func OpenMemory() (*DB, error) {
	d, err := Open("file::memory:")
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(context.Background()); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// DefaultPath returns the path to the SQLite database file
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".doit", "doit.db"), nil
}

// Migrate creates/updates the database schema
func (d *DB) Migrate(ctx context.Context) error {
	if err := d.conn.WithContext(ctx).AutoMigrate(
		&models.Task{},
		&models.User{},
		&models.Session{},
		&models.Settings{},
		&models.Win{},
		&models.HappySettings{},
		&models.EmailLog{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	sqlDB, err := d.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// notFound maps gorm's missing-record error onto the store sentinel
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}
