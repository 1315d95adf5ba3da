package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

var taskColumns = []string{"id", "user_id", "title", "profile", "section", "completed", "created_at", "updated_at"}

func (s *Store) ListTasks(ctx context.Context, scope string, profile models.Profile) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	q := s.sq.Select(taskColumns...).From("tasks").
		Where("user_id = ? AND profile = ?", scope, profile).
		OrderBy("created_at ASC")
	err := s.scoped(ctx, scope, func(ex sqlx.ExtContext) error {
		return selectAll(ctx, ex, &tasks, q)
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) ListAllTasks(ctx context.Context, scope string) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	q := s.sq.Select(taskColumns...).From("tasks").
		Where("user_id = ?", scope).
		OrderBy("created_at ASC")
	err := s.scoped(ctx, scope, func(ex sqlx.ExtContext) error {
		return selectAll(ctx, ex, &tasks, q)
	})
	if err != nil {
		return nil, fmt.Errorf("list all tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	q := s.sq.Insert("tasks").Columns(taskColumns...).
		Values(task.ID, task.UserID, task.Title, task.Profile, task.Section, task.Completed, task.CreatedAt, task.UpdatedAt)
	err := s.scoped(ctx, task.UserID, func(ex sqlx.ExtContext) error {
		_, err := exec(ctx, ex, q)
		return err
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// UpdateTask is a single UPDATE ... RETURNING so concurrent patches on the
// same row are serialized by Postgres
func (s *Store) UpdateTask(ctx context.Context, scope, id string, patch models.TaskPatch, now time.Time) (*models.Task, error) {
	set := map[string]interface{}{"updated_at": now}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Section != nil {
		set["section"] = *patch.Section
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	q := s.sq.Update("tasks").SetMap(set).
		Where("id = ? AND user_id = ?", id, scope).
		Suffix("RETURNING " + strings.Join(taskColumns, ", "))

	var task models.Task
	err := s.scoped(ctx, scope, func(ex sqlx.ExtContext) error {
		return get(ctx, ex, &task, q)
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &task, nil
}

func (s *Store) DeleteTask(ctx context.Context, scope, id string) error {
	q := s.sq.Delete("tasks").Where("id = ? AND user_id = ?", id, scope)
	var n int64
	err := s.scoped(ctx, scope, func(ex sqlx.ExtContext) error {
		var err error
		n, err = exec(ctx, ex, q)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ClearCompleted(ctx context.Context, scope string, profile models.Profile) (int64, error) {
	q := s.sq.Delete("tasks").Where(squirrel.And{
		squirrel.Expr("user_id = ?", scope),
		squirrel.Expr("profile = ?", profile),
		squirrel.Expr("completed = ?", true),
	})
	var n int64
	err := s.scoped(ctx, scope, func(ex sqlx.ExtContext) error {
		var err error
		n, err = exec(ctx, ex, q)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return n, nil
}
