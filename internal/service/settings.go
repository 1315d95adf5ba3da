package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

// UpdateSettingsRequest holds a partial settings update
type UpdateSettingsRequest struct {
	Theme    *string
	DarkMode *string
}

// SettingsService manages the single settings record of a scope
type SettingsService struct {
	store store.Settings
	log   *zap.Logger
	now   func() time.Time
}

func NewSettingsService(s store.Settings, log *zap.Logger) *SettingsService {
	return &SettingsService{
		store: s,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the scope's settings, creating the defaults on first read.
// Every read stamps LastAppOpen since the app loads settings on open.
func (s *SettingsService) Get(ctx context.Context, scope string) (*models.Settings, error) {
	now := s.now()
	opened := models.DefaultSettings(scope, now)
	opened.LastAppOpen = &now
	if err := s.store.UpsertSettings(ctx, opened, models.ColLastAppOpen); err != nil {
		return nil, upstream("save settings", err)
	}
	return s.reload(ctx, scope)
}

// Update writes only the supplied fields, creating the record from the
// defaults if the scope has none
func (s *SettingsService) Update(ctx context.Context, scope string, req UpdateSettingsRequest) (*models.Settings, error) {
	var patch models.SettingsPatch
	if req.Theme != nil {
		theme := strings.TrimSpace(*req.Theme)
		if theme == "" {
			return nil, required("theme", "theme must not be blank")
		}
		patch.Theme = &theme
	}
	if req.DarkMode != nil {
		if err := models.ValidateDarkMode(*req.DarkMode); err != nil {
			return nil, invalid("dark_mode", err)
		}
		patch.DarkMode = req.DarkMode
	}
	if patch.Empty() {
		return nil, errNoFields
	}

	now := s.now()
	record := models.DefaultSettings(scope, now)
	patch.Apply(record, now)
	if err := s.store.UpsertSettings(ctx, record, patch.Columns()...); err != nil {
		return nil, upstream("save settings", err)
	}

	settings, err := s.reload(ctx, scope)
	if err != nil {
		return nil, err
	}
	s.log.Debug("settings updated", zap.String("theme", settings.Theme), zap.String("dark_mode", settings.DarkMode))
	return settings, nil
}

func (s *SettingsService) reload(ctx context.Context, scope string) (*models.Settings, error) {
	settings, err := s.store.GetSettings(ctx, scope)
	if err != nil {
		return nil, upstream("get settings", err)
	}
	return settings, nil
}
