// Package pgstore implements store.Store on Postgres (Supabase) with sqlx and
// squirrel.
//
// Scoped calls always filter on user_id. With RLS enabled they additionally
// run inside a transaction that sets request.jwt.claim.sub and switches to the
// authenticated role, so Supabase row-level security policies apply as well.
package pgstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/balkashynov/doit/internal/store"
)

//go:embed schema.sql
var schema string

// Config holds connection pool settings
type Config struct {
	URL             string
	RLS             bool
	ConnMaxLifetime time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
}

// NewConfig returns pool defaults for url
func NewConfig(url string) *Config {
	return &Config{
		URL:             url,
		ConnMaxLifetime: 10 * time.Minute,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
	}
}

// Store is the Postgres-backed store
type Store struct {
	db  *sqlx.DB
	rls bool
	sq  squirrel.StatementBuilderType
}

var _ store.Store = (*Store)(nil)

// Open connects and pings the database
func Open(ctx context.Context, cfg *Config) (*Store, error) {
	db, err := sqlx.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db, cfg.RLS), nil
}

// New wraps an existing connection
func New(db *sqlx.DB, rls bool) *Store {
	return &Store{
		db:  db,
		rls: rls,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Migrate applies the embedded schema
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// scoped runs fn against the pool, or against a transaction carrying the
// scope's claims when RLS delegation is on
func (s *Store) scoped(ctx context.Context, scope string, fn func(q sqlx.ExtContext) error) error {
	if !s.rls {
		return fn(s.db)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "SELECT set_config('request.jwt.claim.sub', $1, true)", scope); err != nil {
		return fmt.Errorf("failed to set claims: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "SET LOCAL ROLE authenticated"); err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

func get(ctx context.Context, q sqlx.QueryerContext, dest interface{}, b squirrel.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := sqlx.GetContext(ctx, q, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

func selectAll(ctx context.Context, q sqlx.QueryerContext, dest interface{}, b squirrel.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

func exec(ctx context.Context, q sqlx.ExecerContext, b squirrel.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
