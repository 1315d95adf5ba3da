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

// ListTasks returns a scope's tasks for one profile, oldest first
func (d *DB) ListTasks(ctx context.Context, scope string, profile models.Profile) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	err := d.conn.WithContext(ctx).
		Where("user_id = ? AND profile = ?", scope, profile).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListAllTasks returns every task of a scope across profiles
func (d *DB) ListAllTasks(ctx context.Context, scope string) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	err := d.conn.WithContext(ctx).
		Where("user_id = ?", scope).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list all tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask saves a new task
func (d *DB) CreateTask(ctx context.Context, task *models.Task) error {
	if err := d.conn.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// UpdateTask applies a patch to the task matching both id and scope
func (d *DB) UpdateTask(ctx context.Context, scope, id string, patch models.TaskPatch, now time.Time) (*models.Task, error) {
	var task models.Task
	err := d.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, scope).First(&task).Error; err != nil {
			return notFound(err)
		}
		patch.Apply(&task, now)
		return tx.Save(&task).Error
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &task, nil
}

// DeleteTask removes the task matching both id and scope
func (d *DB) DeleteTask(ctx context.Context, scope, id string) error {
	result := d.conn.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, scope).
		Delete(&models.Task{})
	if result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ClearCompleted deletes the completed tasks of one profile
func (d *DB) ClearCompleted(ctx context.Context, scope string, profile models.Profile) (int64, error) {
	result := d.conn.WithContext(ctx).
		Where("user_id = ? AND profile = ? AND completed = ?", scope, profile, true).
		Delete(&models.Task{})
	if result.Error != nil {
		return 0, fmt.Errorf("clear completed: %w", result.Error)
	}
	return result.RowsAffected, nil
}
