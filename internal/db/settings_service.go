package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

// GetSettings returns the scope's settings or store.ErrNotFound
func (d *DB) GetSettings(ctx context.Context, scope string) (*models.Settings, error) {
	var settings models.Settings
	if err := d.conn.WithContext(ctx).Where("user_id = ?", scope).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &settings, nil
}

// UpsertSettings inserts the record if absent, otherwise writes only columns
func (d *DB) UpsertSettings(ctx context.Context, settings *models.Settings, columns ...string) error {
	err := d.conn.WithContext(ctx).
		Clauses(onConflictUser(columns)).
		Create(settings).Error
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

// CreateWin appends to the wins log
func (d *DB) CreateWin(ctx context.Context, win *models.Win) error {
	if err := d.conn.WithContext(ctx).Create(win).Error; err != nil {
		return fmt.Errorf("create win: %w", err)
	}
	return nil
}

// ListWins returns a scope's wins, most recent first
func (d *DB) ListWins(ctx context.Context, scope string) ([]models.Win, error) {
	wins := make([]models.Win, 0)
	err := d.conn.WithContext(ctx).
		Where("user_id = ?", scope).
		Order("completed_at DESC").
		Find(&wins).Error
	if err != nil {
		return nil, fmt.Errorf("list wins: %w", err)
	}
	return wins, nil
}

// CountWins counts wins completed at or after since
func (d *DB) CountWins(ctx context.Context, scope string, since time.Time) (int64, error) {
	var count int64
	err := d.conn.WithContext(ctx).Model(&models.Win{}).
		Where("user_id = ? AND completed_at >= ?", scope, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count wins: %w", err)
	}
	return count, nil
}

// onConflictUser resolves a user_id conflict by assigning only columns
func onConflictUser(columns []string) clause.OnConflict {
	conflict := clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}}
	if len(columns) == 0 {
		conflict.DoNothing = true
	} else {
		conflict.DoUpdates = clause.AssignmentColumns(columns)
	}
	return conflict
}
