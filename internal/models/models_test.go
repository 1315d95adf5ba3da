package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile(" work ")
	require.NoError(t, err)
	assert.Equal(t, ProfileWork, p)

	_, err = ParseProfile("home")
	assert.Error(t, err)
	_, err = ParseProfile("")
	assert.Error(t, err)
}

func TestSectionSet_Parse(t *testing.T) {
	_, err := LaterSections.Parse("someday")
	assert.Error(t, err)
	_, err = SomedaySections.Parse("later")
	assert.Error(t, err)

	sec, err := SomedaySections.Parse("someday")
	require.NoError(t, err)
	assert.Equal(t, SectionSomeday, sec)

	assert.Equal(t, "today, tomorrow, later", LaterSections.String())
}

func TestTaskPatch(t *testing.T) {
	assert.True(t, TaskPatch{}.Empty())

	done := true
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task := &Task{Title: "a", Section: SectionToday}
	TaskPatch{Completed: &done}.Apply(task, now)

	assert.True(t, task.Completed)
	assert.Equal(t, "a", task.Title)
	assert.Equal(t, now, task.UpdatedAt)
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, (&Session{ExpiresAt: now}).Expired(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Second)}).Expired(now))
}

func TestHappySettingsLocation(t *testing.T) {
	assert.Equal(t, DefaultTimezone, (&HappySettings{}).Location().String())
	assert.Equal(t, time.UTC, (&HappySettings{Timezone: "Nowhere/Special"}).Location())
}

func TestValidateDarkMode(t *testing.T) {
	assert.NoError(t, ValidateDarkMode("dark"))
	assert.Error(t, ValidateDarkMode("dim"))
}
