package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

// CreateWinRequest holds a win to log; CompletedAt defaults to now
type CreateWinRequest struct {
	Task        string
	CompletedAt *time.Time
}

// WinsService manages the append-only wins log
type WinsService struct {
	store store.Wins
	now   func() time.Time
}

func NewWinsService(s store.Wins) *WinsService {
	return &WinsService{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *WinsService) Create(ctx context.Context, scope string, req CreateWinRequest) (*models.Win, error) {
	text := strings.TrimSpace(req.Task)
	if text == "" {
		return nil, required("task", "task is required")
	}

	completed := s.now()
	if req.CompletedAt != nil {
		completed = req.CompletedAt.UTC()
	}

	win := &models.Win{
		ID:          uuid.NewString(),
		UserID:      scope,
		Task:        text,
		CompletedAt: completed,
	}
	if err := s.store.CreateWin(ctx, win); err != nil {
		return nil, upstream("create win", err)
	}
	return win, nil
}

// List returns the scope's wins, most recent first
func (s *WinsService) List(ctx context.Context, scope string) ([]models.Win, error) {
	wins, err := s.store.ListWins(ctx, scope)
	if err != nil {
		return nil, upstream("list wins", err)
	}
	return wins, nil
}
