package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

func (s *Store) GetSettings(ctx context.Context, scope string) (*models.Settings, error) {
	var settings models.Settings
	q := s.sq.Select("user_id", "theme", "dark_mode", "last_app_open", "updated_at").
		From("user_settings").
		Where("user_id = ?", scope)
	err := s.scoped(ctx, scope, func(ex sqlx.ExtContext) error {
		return get(ctx, ex, &settings, q)
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &settings, nil
}

func (s *Store) UpsertSettings(ctx context.Context, settings *models.Settings, columns ...string) error {
	q := s.sq.Insert("user_settings").
		Columns("user_id", "theme", "dark_mode", "last_app_open", "updated_at").
		Values(settings.UserID, settings.Theme, settings.DarkMode, settings.LastAppOpen, settings.UpdatedAt).
		Suffix(onConflict("user_id", columns))
	err := s.scoped(ctx, settings.UserID, func(ex sqlx.ExtContext) error {
		_, err := exec(ctx, ex, q)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

func (s *Store) CreateWin(ctx context.Context, win *models.Win) error {
	q := s.sq.Insert("wins").
		Columns("id", "user_id", "task", "completed_at").
		Values(win.ID, win.UserID, win.Task, win.CompletedAt)
	err := s.scoped(ctx, win.UserID, func(ex sqlx.ExtContext) error {
		_, err := exec(ctx, ex, q)
		return err
	})
	if err != nil {
		return fmt.Errorf("create win: %w", err)
	}
	return nil
}

func (s *Store) ListWins(ctx context.Context, scope string) ([]models.Win, error) {
	wins := make([]models.Win, 0)
	q := s.sq.Select("id", "user_id", "task", "completed_at").
		From("wins").
		Where("user_id = ?", scope).
		OrderBy("completed_at DESC")
	err := s.scoped(ctx, scope, func(ex sqlx.ExtContext) error {
		return selectAll(ctx, ex, &wins, q)
	})
	if err != nil {
		return nil, fmt.Errorf("list wins: %w", err)
	}
	return wins, nil
}

func (s *Store) CountWins(ctx context.Context, scope string, since time.Time) (int64, error) {
	var n int64
	q := s.sq.Select("COUNT(*)").
		From("wins").
		Where("user_id = ? AND completed_at >= ?", scope, since)
	err := s.scoped(ctx, scope, func(ex sqlx.ExtContext) error {
		return get(ctx, ex, &n, q)
	})
	if err != nil {
		return 0, fmt.Errorf("count wins: %w", err)
	}
	return n, nil
}

// onConflict assigns only columns from the rejected row; callers pass
// column names, never input
func onConflict(key string, columns []string) string {
	if len(columns) == 0 {
		return "ON CONFLICT (" + key + ") DO NOTHING"
	}
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = c + " = EXCLUDED." + c
	}
	return "ON CONFLICT (" + key + ") DO UPDATE SET " + strings.Join(sets, ", ")
}
