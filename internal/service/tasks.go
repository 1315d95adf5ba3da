// Package service holds the task, settings and wins operations behind the
// HTTP handlers. Services validate input, stamp ids and timestamps, and
// translate store errors into the package's error taxonomy.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

// CreateTaskRequest holds the data needed to create a new task
type CreateTaskRequest struct {
	Title   string
	Profile string
	Section string // empty means DefaultSection
}

// UpdateTaskRequest holds a partial task update; nil fields are left alone
type UpdateTaskRequest struct {
	Title     *string
	Section   *string
	Completed *bool
}

// TaskService manages tasks within a scope
type TaskService struct {
	store    store.Tasks
	sections models.SectionSet
	log      *zap.Logger
	now      func() time.Time
}

// NewTaskService creates a task service accepting the given section set
func NewTaskService(s store.Tasks, sections models.SectionSet, log *zap.Logger) *TaskService {
	return &TaskService{
		store:    s,
		sections: sections,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Sections returns the accepted section set
func (s *TaskService) Sections() models.SectionSet {
	return s.sections
}

// List returns the scope's tasks for a profile, oldest first
func (s *TaskService) List(ctx context.Context, scope, profile string) ([]models.Task, error) {
	p, err := models.ParseProfile(profile)
	if err != nil {
		return nil, invalid("profile", err)
	}
	tasks, err := s.store.ListTasks(ctx, scope, p)
	if err != nil {
		return nil, upstream("list tasks", err)
	}
	return tasks, nil
}

// Create validates the request and stores a new incomplete task
func (s *TaskService) Create(ctx context.Context, scope string, req CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, required("title", "title is required")
	}
	profile, err := models.ParseProfile(req.Profile)
	if err != nil {
		return nil, invalid("profile", err)
	}
	section := models.DefaultSection
	if req.Section != "" {
		if section, err = s.sections.Parse(req.Section); err != nil {
			return nil, invalid("section", err)
		}
	}

	now := s.now()
	task := &models.Task{
		ID:        uuid.NewString(),
		UserID:    scope,
		Title:     title,
		Profile:   profile,
		Section:   section,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, upstream("create task", err)
	}

	s.log.Debug("task created", zap.String("id", task.ID), zap.String("profile", string(profile)))
	return task, nil
}

// Update applies the supplied fields to a task in scope
func (s *TaskService) Update(ctx context.Context, scope, id string, req UpdateTaskRequest) (*models.Task, error) {
	var patch models.TaskPatch
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, required("title", "title must not be blank")
		}
		patch.Title = &title
	}
	if req.Section != nil {
		section, err := s.sections.Parse(*req.Section)
		if err != nil {
			return nil, invalid("section", err)
		}
		patch.Section = &section
	}
	patch.Completed = req.Completed

	if patch.Empty() {
		return nil, errNoFields
	}

	task, err := s.store.UpdateTask(ctx, scope, id, patch, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, upstream("update task", err)
	}
	return task, nil
}

// Delete removes one task in scope
func (s *TaskService) Delete(ctx context.Context, scope, id string) error {
	err := s.store.DeleteTask(ctx, scope, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return upstream("delete task", err)
	}
	return nil
}

// ClearCompleted deletes every completed task of a profile in scope
func (s *TaskService) ClearCompleted(ctx context.Context, scope, profile string) (int64, error) {
	p, err := models.ParseProfile(profile)
	if err != nil {
		return 0, invalid("profile", err)
	}
	n, err := s.store.ClearCompleted(ctx, scope, p)
	if err != nil {
		return 0, upstream("clear completed", err)
	}
	s.log.Debug("completed tasks cleared", zap.String("profile", string(p)), zap.Int64("deleted", n))
	return n, nil
}
