package models

import "time"

// DefaultTimezone is assumed when a user never set one
const DefaultTimezone = "America/New_York"

// Happy settings columns a partial write may target
const (
	ColEnabled  = "enabled"
	ColName     = "name"
	ColEmail    = "email"
	ColTimezone = "timezone"
)

// HappySettings is a user's opt-in for accountability emails
type HappySettings struct {
	UserID    string    `gorm:"primaryKey;size:64" db:"user_id" bson:"user_id" json:"user_id"`
	Enabled   bool      `gorm:"index;not null" db:"enabled" bson:"enabled" json:"enabled"`
	Name      string    `db:"name" bson:"name" json:"name"`
	Email     string    `db:"email" bson:"email" json:"email"`
	Timezone  string    `db:"timezone" bson:"timezone" json:"timezone"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" db:"updated_at" bson:"updated_at" json:"updated_at"`
}

func (HappySettings) TableName() string { return "happy_settings" }

// Location resolves the user's timezone, falling back to DefaultTimezone
func (h *HappySettings) Location() *time.Location {
	tz := h.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EmailLog records one sent accountability email
type EmailLog struct {
	ID      string    `gorm:"primaryKey;size:64" db:"id" bson:"id" json:"id"`
	UserID  string    `gorm:"index:idx_email_log_job;size:64;not null" db:"user_id" bson:"user_id" json:"user_id"`
	JobType string    `gorm:"index:idx_email_log_job;size:32;not null" db:"job_type" bson:"job_type" json:"job_type"`
	Subject string    `db:"subject" bson:"subject" json:"subject"`
	SentAt  time.Time `gorm:"index" db:"sent_at" bson:"sent_at" json:"sent_at"`
}

func (EmailLog) TableName() string { return "happy_email_log" }
