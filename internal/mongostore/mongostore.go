// Package mongostore implements store.Store on MongoDB.
//
// Records are stored with their string ids in an id field; _id is left to the
// server and projected out of every read.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

const (
	colTasks    = "tasks"
	colUsers    = "users"
	colSessions = "user_sessions"
	colSettings = "user_settings"
	colWins     = "wins"
	colHappy    = "happy_settings"
	colEmailLog = "happy_email_log"
)

var noID = bson.D{{Key: "_id", Value: 0}}

// Store is the MongoDB-backed store
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// Open connects to uri and selects the database
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

// Migrate creates the indexes the queries rely on
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colTasks: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "profile", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colUsers: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colSessions: {
			{Keys: bson.D{{Key: "session_token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		},
		colSettings: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colWins: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "completed_at", Value: -1}}},
		},
		colHappy: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colEmailLog: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "job_type", Value: 1}, {Key: "sent_at", Value: 1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Close disconnects the client
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) findOne(ctx context.Context, collection string, filter bson.D, dest interface{}) error {
	err := s.db.Collection(collection).
		FindOne(ctx, filter, options.FindOne().SetProjection(noID)).
		Decode(dest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.D, sort bson.D) ([]T, error) {
	opts := options.Find().SetProjection(noID)
	if sort != nil {
		opts.SetSort(sort)
	}
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListTasks(ctx context.Context, scope string, profile models.Profile) ([]models.Task, error) {
	filter := bson.D{{Key: "user_id", Value: scope}, {Key: "profile", Value: profile}}
	tasks, err := findAll[models.Task](ctx, s.db.Collection(colTasks), filter, bson.D{{Key: "created_at", Value: 1}})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) ListAllTasks(ctx context.Context, scope string) ([]models.Task, error) {
	filter := bson.D{{Key: "user_id", Value: scope}}
	tasks, err := findAll[models.Task](ctx, s.db.Collection(colTasks), filter, bson.D{{Key: "created_at", Value: 1}})
	if err != nil {
		return nil, fmt.Errorf("list all tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	doc := taskDoc(task)
	if _, err := s.db.Collection(colTasks).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// taskDoc writes user_id explicitly so the shared scope ("") is stored and
// matched rather than omitted
func taskDoc(t *models.Task) bson.D {
	return bson.D{
		{Key: "id", Value: t.ID},
		{Key: "user_id", Value: t.UserID},
		{Key: "title", Value: t.Title},
		{Key: "profile", Value: t.Profile},
		{Key: "section", Value: t.Section},
		{Key: "completed", Value: t.Completed},
		{Key: "created_at", Value: t.CreatedAt},
		{Key: "updated_at", Value: t.UpdatedAt},
	}
}

func (s *Store) UpdateTask(ctx context.Context, scope, id string, patch models.TaskPatch, now time.Time) (*models.Task, error) {
	set := bson.D{{Key: "updated_at", Value: now}}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Section != nil {
		set = append(set, bson.E{Key: "section", Value: *patch.Section})
	}
	if patch.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *patch.Completed})
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(noID)

	var task models.Task
	err := s.db.Collection(colTasks).
		FindOneAndUpdate(ctx, bson.D{{Key: "id", Value: id}, {Key: "user_id", Value: scope}}, bson.D{{Key: "$set", Value: set}}, opts).
		Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &task, nil
}

func (s *Store) DeleteTask(ctx context.Context, scope, id string) error {
	res, err := s.db.Collection(colTasks).DeleteOne(ctx, bson.D{{Key: "id", Value: id}, {Key: "user_id", Value: scope}})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ClearCompleted(ctx context.Context, scope string, profile models.Profile) (int64, error) {
	filter := bson.D{
		{Key: "user_id", Value: scope},
		{Key: "profile", Value: profile},
		{Key: "completed", Value: true},
	}
	res, err := s.db.Collection(colTasks).DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.DeletedCount, nil
}

// upsertDoc builds an upsert update that writes columns of doc on an existing
// document and the rest of doc only on insert
func upsertDoc(doc any, columns []string) (bson.D, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	var set, onInsert bson.D
	for _, f := range fields {
		if slices.Contains(columns, f.Key) {
			set = append(set, f)
		} else {
			onInsert = append(onInsert, f)
		}
	}

	var update bson.D
	if len(set) > 0 {
		update = append(update, bson.E{Key: "$set", Value: set})
	}
	if len(onInsert) > 0 {
		update = append(update, bson.E{Key: "$setOnInsert", Value: onInsert})
	}
	return update, nil
}

func (s *Store) upsertColumns(ctx context.Context, collection string, filter bson.D, doc any, columns []string) error {
	update, err := upsertDoc(doc, columns)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(collection).UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	return err
}
