package models

import (
	"time"
)

// Session is an issued login token for a user
type Session struct {
	Token     string    `gorm:"column:session_token;primaryKey;size:128" db:"session_token" bson:"session_token" json:"session_token"`
	UserID    string    `gorm:"index;size:64;not null" db:"user_id" bson:"user_id" json:"user_id"`
	ExpiresAt time.Time `gorm:"index;not null" db:"expires_at" bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"created_at"`
}

// TableName keeps the table name stable across backends
func (Session) TableName() string { return "user_sessions" }

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// User is an authenticated account created on first login
type User struct {
	ID        string    `gorm:"column:user_id;primaryKey;size:64" db:"user_id" bson:"user_id" json:"user_id"`
	Email     string    `gorm:"uniqueIndex;size:320;not null" db:"email" bson:"email" json:"email"`
	Name      string    `db:"name" bson:"name" json:"name"`
	Picture   string    `db:"picture" bson:"picture,omitempty" json:"picture,omitempty"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }
