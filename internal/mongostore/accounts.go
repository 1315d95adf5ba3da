package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

func (s *Store) UpsertSession(ctx context.Context, session *models.Session) error {
	filter := bson.D{{Key: "session_token", Value: session.Token}}
	if err := s.upsertColumns(ctx, colSessions, filter, session, []string{"expires_at"}); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	if err := s.findOne(ctx, colSessions, bson.D{{Key: "session_token", Value: token}}, &session); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.Collection(colSessions).DeleteOne(ctx, bson.D{{Key: "session_token", Value: token}}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.Collection(colSessions).DeleteMany(ctx, bson.D{{Key: "expires_at", Value: bson.D{{Key: "$lte", Value: now}}}})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.DeletedCount, nil
}

// UpsertUserByEmail keeps user_id and created_at from the first insert
func (s *Store) UpsertUserByEmail(ctx context.Context, user *models.User) (*models.User, error) {
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "name", Value: user.Name},
			{Key: "picture", Value: user.Picture},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "user_id", Value: user.ID},
			{Key: "created_at", Value: user.CreatedAt},
		}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(noID)

	var stored models.User
	err := s.db.Collection(colUsers).
		FindOneAndUpdate(ctx, bson.D{{Key: "email", Value: user.Email}}, update, opts).
		Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &stored, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.findOne(ctx, colUsers, bson.D{{Key: "user_id", Value: id}}, &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (s *Store) GetSettings(ctx context.Context, scope string) (*models.Settings, error) {
	var settings models.Settings
	if err := s.findOne(ctx, colSettings, bson.D{{Key: "user_id", Value: scope}}, &settings); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &settings, nil
}

func (s *Store) UpsertSettings(ctx context.Context, settings *models.Settings, columns ...string) error {
	filter := bson.D{{Key: "user_id", Value: settings.UserID}}
	if err := s.upsertColumns(ctx, colSettings, filter, settings, columns); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

func (s *Store) CreateWin(ctx context.Context, win *models.Win) error {
	if _, err := s.db.Collection(colWins).InsertOne(ctx, win); err != nil {
		return fmt.Errorf("create win: %w", err)
	}
	return nil
}

func (s *Store) ListWins(ctx context.Context, scope string) ([]models.Win, error) {
	wins, err := findAll[models.Win](ctx, s.db.Collection(colWins),
		bson.D{{Key: "user_id", Value: scope}},
		bson.D{{Key: "completed_at", Value: -1}})
	if err != nil {
		return nil, fmt.Errorf("list wins: %w", err)
	}
	return wins, nil
}

func (s *Store) CountWins(ctx context.Context, scope string, since time.Time) (int64, error) {
	filter := bson.D{
		{Key: "user_id", Value: scope},
		{Key: "completed_at", Value: bson.D{{Key: "$gte", Value: since}}},
	}
	n, err := s.db.Collection(colWins).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count wins: %w", err)
	}
	return n, nil
}

func (s *Store) ListHappyUsers(ctx context.Context) ([]models.HappySettings, error) {
	users, err := findAll[models.HappySettings](ctx, s.db.Collection(colHappy), bson.D{{Key: "enabled", Value: true}}, nil)
	if err != nil {
		return nil, fmt.Errorf("list happy users: %w", err)
	}
	return users, nil
}

func (s *Store) GetHappySettings(ctx context.Context, userID string) (*models.HappySettings, error) {
	var settings models.HappySettings
	if err := s.findOne(ctx, colHappy, bson.D{{Key: "user_id", Value: userID}}, &settings); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get happy settings: %w", err)
	}
	return &settings, nil
}

func (s *Store) UpsertHappySettings(ctx context.Context, settings *models.HappySettings, columns ...string) error {
	filter := bson.D{{Key: "user_id", Value: settings.UserID}}
	if err := s.upsertColumns(ctx, colHappy, filter, settings, columns); err != nil {
		return fmt.Errorf("upsert happy settings: %w", err)
	}
	return nil
}

func (s *Store) EmailSentSince(ctx context.Context, userID, jobType string, since time.Time) (bool, error) {
	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "job_type", Value: jobType},
		{Key: "sent_at", Value: bson.D{{Key: "$gte", Value: since}}},
	}
	n, err := s.db.Collection(colEmailLog).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check email log: %w", err)
	}
	return n > 0, nil
}

func (s *Store) LogEmail(ctx context.Context, entry *models.EmailLog) error {
	if _, err := s.db.Collection(colEmailLog).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("log email: %w", err)
	}
	return nil
}
