package models

import "time"

// Win is an append-only record of a completed task
type Win struct {
	ID          string    `gorm:"primaryKey;size:64" db:"id" bson:"id" json:"id"`
	UserID      string    `gorm:"index;size:64;not null" db:"user_id" bson:"user_id" json:"user_id"`
	Task        string    `gorm:"not null" db:"task" bson:"task" json:"task"`
	CompletedAt time.Time `gorm:"index" db:"completed_at" bson:"completed_at" json:"completed_at"`
}

func (Win) TableName() string { return "wins" }
