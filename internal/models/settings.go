package models

import (
	"fmt"
	"time"
)

// Settings defaults applied when a scope reads its settings for the first time
const (
	DefaultTheme    = "yellow"
	DefaultDarkMode = "auto"
)

var darkModes = map[string]bool{"auto": true, "light": true, "dark": true}

// ValidateDarkMode checks a dark-mode value
func ValidateDarkMode(mode string) error {
	if !darkModes[mode] {
		return fmt.Errorf("dark_mode must be one of: auto, light, dark")
	}
	return nil
}

// Settings holds per-scope UI preferences
type Settings struct {
	UserID      string     `gorm:"primaryKey;size:64" db:"user_id" bson:"user_id" json:"user_id"`
	Theme       string     `gorm:"size:32;not null" db:"theme" bson:"theme" json:"theme"`
	DarkMode    string     `gorm:"size:16;not null" db:"dark_mode" bson:"dark_mode" json:"dark_mode"`
	LastAppOpen *time.Time `db:"last_app_open" bson:"last_app_open,omitempty" json:"last_app_open,omitempty"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime:false" db:"updated_at" bson:"updated_at" json:"updated_at"`
}

func (Settings) TableName() string { return "user_settings" }

// DefaultSettings builds the record synthesized on first read
func DefaultSettings(userID string, now time.Time) *Settings {
	return &Settings{
		UserID:    userID,
		Theme:     DefaultTheme,
		DarkMode:  DefaultDarkMode,
		UpdatedAt: now,
	}
}

// Settings columns a partial write may target
const (
	ColTheme       = "theme"
	ColDarkMode    = "dark_mode"
	ColLastAppOpen = "last_app_open"
	ColUpdatedAt   = "updated_at"
)

// SettingsPatch holds the fields of a partial settings update
type SettingsPatch struct {
	Theme    *string
	DarkMode *string
}

// Empty reports whether the patch carries no fields
func (p SettingsPatch) Empty() bool {
	return p.Theme == nil && p.DarkMode == nil
}

// Columns lists the settings columns the patch writes
func (p SettingsPatch) Columns() []string {
	var cols []string
	if p.Theme != nil {
		cols = append(cols, ColTheme)
	}
	if p.DarkMode != nil {
		cols = append(cols, ColDarkMode)
	}
	return append(cols, ColUpdatedAt)
}

// Apply copies the supplied fields onto a settings record
func (p SettingsPatch) Apply(s *Settings, now time.Time) {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.DarkMode != nil {
		s.DarkMode = *p.DarkMode
	}
	s.UpdatedAt = now
}
