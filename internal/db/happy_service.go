package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

// ListHappyUsers returns every user who opted in to accountability emails
func (d *DB) ListHappyUsers(ctx context.Context) ([]models.HappySettings, error) {
	users := make([]models.HappySettings, 0)
	if err := d.conn.WithContext(ctx).Where("enabled = ?", true).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list happy users: %w", err)
	}
	return users, nil
}

// GetHappySettings returns one user's opt-in record
func (d *DB) GetHappySettings(ctx context.Context, userID string) (*models.HappySettings, error) {
	var settings models.HappySettings
	if err := d.conn.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get happy settings: %w", err)
	}
	return &settings, nil
}

// UpsertHappySettings inserts a user's opt-in record if absent, otherwise
// writes only columns
func (d *DB) UpsertHappySettings(ctx context.Context, settings *models.HappySettings, columns ...string) error {
	err := d.conn.WithContext(ctx).
		Clauses(onConflictUser(columns)).
		Create(settings).Error
	if err != nil {
		return fmt.Errorf("upsert happy settings: %w", err)
	}
	return nil
}

// EmailSentSince reports whether jobType was logged for the user at or after since
func (d *DB) EmailSentSince(ctx context.Context, userID, jobType string, since time.Time) (bool, error) {
	var count int64
	err := d.conn.WithContext(ctx).Model(&models.EmailLog{}).
		Where("user_id = ? AND job_type = ? AND sent_at >= ?", userID, jobType, since).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check email log: %w", err)
	}
	return count > 0, nil
}

// LogEmail records a sent email
func (d *DB) LogEmail(ctx context.Context, entry *models.EmailLog) error {
	if err := d.conn.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("log email: %w", err)
	}
	return nil
}
