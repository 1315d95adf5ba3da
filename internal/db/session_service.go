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

// UpsertSession records an issued session token. Re-issuing a known token
// only moves its expiry.
func (d *DB) UpsertSession(ctx context.Context, session *models.Session) error {
	err := d.conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_token"}},
			DoUpdates: clause.AssignmentColumns([]string{"expires_at"}),
		}).
		Create(session).Error
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// GetSession looks a session up by token. Expired rows are returned as-is;
// callers decide what expiry means.
func (d *DB) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := d.conn.WithContext(ctx).Where("session_token = ?", token).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

// DeleteSession removes a session; deleting a missing token is not an error
func (d *DB) DeleteSession(ctx context.Context, token string) error {
	err := d.conn.WithContext(ctx).Where("session_token = ?", token).Delete(&models.Session{}).Error
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes every session whose expiry has passed
func (d *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result := d.conn.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UpsertUserByEmail creates the user on first login, otherwise refreshes the
// profile fields of the existing record
func (d *DB) UpsertUserByEmail(ctx context.Context, user *models.User) (*models.User, error) {
	var existing models.User
	err := d.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", user.Email).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			existing = *user
			return tx.Create(&existing).Error
		}
		if err != nil {
			return err
		}
		existing.Name = user.Name
		existing.Picture = user.Picture
		return tx.Model(&existing).Updates(map[string]interface{}{
			"name":    user.Name,
			"picture": user.Picture,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &existing, nil
}

// GetUser retrieves a user by ID
func (d *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := d.conn.WithContext(ctx).Where("user_id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}
