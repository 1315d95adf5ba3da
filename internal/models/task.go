package models

import (
	"fmt"
	"strings"
	"time"
)

// Profile is the top-level task category
type Profile string

const (
	ProfilePersonal Profile = "personal"
	ProfileWork     Profile = "work"
)

// Profiles lists every valid profile
var Profiles = []Profile{ProfilePersonal, ProfileWork}

// ParseProfile validates a profile name
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.TrimSpace(s))
	for _, valid := range Profiles {
		if p == valid {
			return p, nil
		}
	}
	return "", fmt.Errorf("profile must be one of: personal, work")
}

// Section is a time-horizon bucket for a task
type Section string

const (
	SectionToday    Section = "today"
	SectionTomorrow Section = "tomorrow"
	SectionLater    Section = "later"
	SectionSomeday  Section = "someday"
)

// DefaultSection is used when a task is created without one
const DefaultSection = SectionToday

// SectionSet is the enumerated set of sections a deployment accepts.
// The shared-list API uses later, the authenticated APIs use someday.
type SectionSet []Section

var (
	LaterSections   = SectionSet{SectionToday, SectionTomorrow, SectionLater}
	SomedaySections = SectionSet{SectionToday, SectionTomorrow, SectionSomeday}
)

// Parse validates a section name against the set
func (s SectionSet) Parse(name string) (Section, error) {
	sec := Section(strings.TrimSpace(name))
	for _, valid := range s {
		if sec == valid {
			return sec, nil
		}
	}
	return "", fmt.Errorf("section must be one of: %s", s)
}

func (s SectionSet) String() string {
	names := make([]string, len(s))
	for i, sec := range s {
		names[i] = string(sec)
	}
	return strings.Join(names, ", ")
}

// Task represents a todo item owned by one scope (user or guest)
type Task struct {
	ID        string    `gorm:"primaryKey;size:64" db:"id" bson:"id" json:"id"`
	UserID    string    `gorm:"index:idx_tasks_scope;size:64" db:"user_id" bson:"user_id,omitempty" json:"user_id,omitempty"`
	Title     string    `gorm:"not null" db:"title" bson:"title" json:"title"`
	Profile   Profile   `gorm:"index:idx_tasks_scope;size:16;not null" db:"profile" bson:"profile" json:"profile"`
	Section   Section   `gorm:"size:16;not null" db:"section" bson:"section" json:"section"`
	Completed bool      `gorm:"not null" db:"completed" bson:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" db:"updated_at" bson:"updated_at" json:"updated_at"`
}

// TaskPatch holds the fields of a partial task update; nil means unchanged
type TaskPatch struct {
	Title     *string
	Section   *Section
	Completed *bool
}

// Empty reports whether the patch carries no fields
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Section == nil && p.Completed == nil
}

// Apply copies the supplied fields onto a task and stamps UpdatedAt
func (p TaskPatch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Section != nil {
		t.Section = *p.Section
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = now
}

func (Task) TableName() string { return "tasks" }
