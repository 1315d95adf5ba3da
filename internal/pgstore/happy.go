package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

// happy jobs run as the service role and read across users, so none of
// these go through scoped

var happyColumns = []string{"user_id", "enabled", "name", "email", "timezone", "updated_at"}

func (s *Store) ListHappyUsers(ctx context.Context) ([]models.HappySettings, error) {
	users := make([]models.HappySettings, 0)
	q := s.sq.Select(happyColumns...).From("happy_settings").Where("enabled = ?", true)
	if err := selectAll(ctx, s.db, &users, q); err != nil {
		return nil, fmt.Errorf("list happy users: %w", err)
	}
	return users, nil
}

func (s *Store) GetHappySettings(ctx context.Context, userID string) (*models.HappySettings, error) {
	var settings models.HappySettings
	q := s.sq.Select(happyColumns...).From("happy_settings").Where("user_id = ?", userID)
	if err := get(ctx, s.db, &settings, q); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get happy settings: %w", err)
	}
	return &settings, nil
}

func (s *Store) UpsertHappySettings(ctx context.Context, settings *models.HappySettings, columns ...string) error {
	q := s.sq.Insert("happy_settings").
		Columns(happyColumns...).
		Values(settings.UserID, settings.Enabled, settings.Name, settings.Email, settings.Timezone, settings.UpdatedAt).
		Suffix(onConflict("user_id", columns))
	if _, err := exec(ctx, s.db, q); err != nil {
		return fmt.Errorf("upsert happy settings: %w", err)
	}
	return nil
}

func (s *Store) EmailSentSince(ctx context.Context, userID, jobType string, since time.Time) (bool, error) {
	var sent bool
	q := s.sq.Select().Column(squirrel.Expr(
		"EXISTS (SELECT 1 FROM happy_email_log WHERE user_id = ? AND job_type = ? AND sent_at >= ?)",
		userID, jobType, since,
	))
	if err := get(ctx, s.db, &sent, q); err != nil {
		return false, fmt.Errorf("check email log: %w", err)
	}
	return sent, nil
}

func (s *Store) LogEmail(ctx context.Context, entry *models.EmailLog) error {
	q := s.sq.Insert("happy_email_log").
		Columns("id", "user_id", "job_type", "subject", "sent_at").
		Values(entry.ID, entry.UserID, entry.JobType, entry.Subject, entry.SentAt)
	if _, err := exec(ctx, s.db, q); err != nil {
		return fmt.Errorf("log email: %w", err)
	}
	return nil
}
