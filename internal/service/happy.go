package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

// UpdateHappyRequest holds a partial update of the accountability-email opt-in
type UpdateHappyRequest struct {
	Enabled  *bool
	Name     *string
	Email    *string
	Timezone *string
}

// HappySettingsService manages a user's accountability-email opt-in
type HappySettingsService struct {
	store store.Happy
	now   func() time.Time
}

func NewHappySettingsService(s store.Happy) *HappySettingsService {
	return &HappySettingsService{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the stored opt-in, or a disabled default seeded with email
func (s *HappySettingsService) Get(ctx context.Context, userID, email string) (*models.HappySettings, error) {
	hs, err := s.store.GetHappySettings(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.HappySettings{
			UserID:   userID,
			Email:    email,
			Timezone: models.DefaultTimezone,
		}, nil
	}
	if err != nil {
		return nil, upstream("get happy settings", err)
	}
	return hs, nil
}

// Update writes only the supplied fields. A first update stores the defaults
// from Get alongside them.
func (s *HappySettingsService) Update(ctx context.Context, userID, email string, req UpdateHappyRequest) (*models.HappySettings, error) {
	if req.Enabled == nil && req.Name == nil && req.Email == nil && req.Timezone == nil {
		return nil, errNoFields
	}

	hs, err := s.Get(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	var columns []string
	if req.Enabled != nil {
		hs.Enabled = *req.Enabled
		columns = append(columns, models.ColEnabled)
	}
	if req.Name != nil {
		hs.Name = strings.TrimSpace(*req.Name)
		columns = append(columns, models.ColName)
	}
	if req.Email != nil {
		addr := strings.TrimSpace(*req.Email)
		if _, err := mail.ParseAddress(addr); err != nil {
			return nil, required("email", "email is not a valid address")
		}
		hs.Email = addr
		columns = append(columns, models.ColEmail)
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil || *req.Timezone == "" {
			return nil, required("timezone", fmt.Sprintf("unknown timezone %q", *req.Timezone))
		}
		hs.Timezone = *req.Timezone
		columns = append(columns, models.ColTimezone)
	}
	if hs.Enabled && hs.Email == "" {
		return nil, required("email", "email is required to enable emails")
	}

	hs.UpdatedAt = s.now()
	columns = append(columns, models.ColUpdatedAt)
	if err := s.store.UpsertHappySettings(ctx, hs, columns...); err != nil {
		return nil, upstream("save happy settings", err)
	}

	stored, err := s.store.GetHappySettings(ctx, userID)
	if err != nil {
		return nil, upstream("get happy settings", err)
	}
	return stored, nil
}
