package happy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

// staleAfter is the age at which an unchecked today task counts as stale
const staleAfter = 24

// TaskSummary is one today task as the composer sees it
type TaskSummary struct {
	Task     string `json:"task"`
	Checked  bool   `json:"checked"`
	AgeHours int    `json:"age_hours"`
}

// UserContext is the snapshot of a user's lists that every prompt is built
// from. It is also handed to the model as JSON.
type UserContext struct {
	UserName        string        `json:"user_name"`
	UserEmail       string        `json:"user_email"`
	UserID          string        `json:"user_id"`
	CurrentTime     time.Time     `json:"current_time"`
	DayOfWeek       string        `json:"day_of_week"`
	TodayTasks      []TaskSummary `json:"today_tasks"`
	TomorrowTasks   []string      `json:"tomorrow_tasks"`
	SomedayTasks    []string      `json:"someday_tasks"`
	CompletedToday  int           `json:"completed_today"`
	PendingToday    int           `json:"pending_today"`
	TotalTasksToday int           `json:"total_tasks_today"`
	StaleTasks      []TaskSummary `json:"stale_tasks"`
	LastAppOpen     time.Time     `json:"last_app_open"`
	DaysInactive    int           `json:"days_inactive"`
	WinsThisWeek    int64         `json:"wins_this_week"`
	WinsTotal       int64         `json:"wins_total"`
	Timezone        string        `json:"timezone"`
}

// Pending returns the unchecked today tasks
func (c *UserContext) Pending() []TaskSummary {
	var out []TaskSummary
	for _, t := range c.TodayTasks {
		if !t.Checked {
			out = append(out, t)
		}
	}
	return out
}

// Completed returns the titles of checked today tasks
func (c *UserContext) Completed() []string {
	var out []string
	for _, t := range c.TodayTasks {
		if t.Checked {
			out = append(out, t.Task)
		}
	}
	return out
}

// Reader is the slice of the store a context is built from
type Reader interface {
	store.Tasks
	store.Wins
	store.Settings
}

// BuildContext gathers a user's tasks, wins and activity as of now
func BuildContext(ctx context.Context, r Reader, hs *models.HappySettings, now time.Time) (*UserContext, error) {
	loc := hs.Location()
	local := now.In(loc)

	tasks, err := r.ListAllTasks(ctx, hs.UserID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	uc := &UserContext{
		UserName:      hs.Name,
		UserEmail:     hs.Email,
		UserID:        hs.UserID,
		CurrentTime:   now,
		DayOfWeek:     local.Weekday().String(),
		TodayTasks:    []TaskSummary{},
		TomorrowTasks: []string{},
		SomedayTasks:  []string{},
		StaleTasks:    []TaskSummary{},
		Timezone:      loc.String(),
	}

	for _, t := range tasks {
		switch t.Section {
		case models.SectionToday:
			s := TaskSummary{
				Task:     t.Title,
				Checked:  t.Completed,
				AgeHours: int(now.Sub(t.CreatedAt).Round(time.Hour).Hours()),
			}
			uc.TodayTasks = append(uc.TodayTasks, s)
			if t.Completed {
				uc.CompletedToday++
			} else {
				uc.PendingToday++
				if s.AgeHours >= staleAfter {
					uc.StaleTasks = append(uc.StaleTasks, s)
				}
			}
		case models.SectionTomorrow:
			uc.TomorrowTasks = append(uc.TomorrowTasks, t.Title)
		case models.SectionSomeday, models.SectionLater:
			uc.SomedayTasks = append(uc.SomedayTasks, t.Title)
		}
	}
	uc.TotalTasksToday = len(uc.TodayTasks)

	if uc.WinsThisWeek, err = r.CountWins(ctx, hs.UserID, now.AddDate(0, 0, -7)); err != nil {
		return nil, fmt.Errorf("count weekly wins: %w", err)
	}
	if uc.WinsTotal, err = r.CountWins(ctx, hs.UserID, time.Time{}); err != nil {
		return nil, fmt.Errorf("count wins: %w", err)
	}

	uc.LastAppOpen = now
	settings, err := r.GetSettings(ctx, hs.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("get settings: %w", err)
	case settings.LastAppOpen != nil:
		uc.LastAppOpen = *settings.LastAppOpen
	}
	uc.DaysInactive = int(now.Sub(uc.LastAppOpen).Hours() / 24)

	return uc, nil
}
