package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"id":1,"text":"a","dueDate":"2024-03-09T15:04:05Z"}`), &task)
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2024-03-09", task.DueDate.String())

	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"dueDate":"2024-03-09"`)

	err = json.Unmarshal([]byte(`{"id":2,"text":"b","dueDate":null}`), &task)
	require.NoError(t, err)
	assert.Nil(t, task.DueDate)

	err = json.Unmarshal([]byte(`{"id":3,"text":"c","dueDate":"next week"}`), &task)
	assert.Error(t, err)
}

func TestPriorityRankAndCycle(t *testing.T) {
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Equal(t, 0, Priority("urgent").Rank())
	assert.False(t, Priority("").Valid())

	p := PriorityLow
	for range 3 {
		p = p.Next()
	}
	assert.Equal(t, PriorityLow, p)

	got, ok := ParsePriority("Hi")
	assert.True(t, ok)
	assert.Equal(t, PriorityHigh, got)
	_, ok = ParsePriority("urgent")
	assert.False(t, ok)
}

func TestNewUser(t *testing.T) {
	u := NewUser("0xabcdef0123456789abcdef0123456789abcd1234", "")
	assert.Equal(t, "0xabcd...1234", u.DisplayName)
	assert.Equal(t, AvatarBaseURL+"?text=AB", u.AvatarURL)

	named := NewUser("0xabcdef0123456789abcdef0123456789abcd1234", "sugar")
	assert.Equal(t, "sugar", named.DisplayName)
	assert.Equal(t, AvatarBaseURL+"?text=SU", named.AvatarURL)
}

func TestTaskOverdueAndCompletedOn(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	yesterday := DateOf(now).AddDays(-1)
	today := DateOf(now)

	task := Task{DueDate: &yesterday}
	assert.True(t, task.IsOverdue(now))

	task.DueDate = &today
	assert.False(t, task.IsOverdue(now), "due today is not overdue")

	task.DueDate = &yesterday
	task.Completed = true
	completedAt := now.Add(-time.Hour)
	task.CompletedAt = &completedAt
	assert.False(t, task.IsOverdue(now))
	assert.True(t, task.CompletedOn(now))
	assert.False(t, task.CompletedOn(now.AddDate(0, 0, 1)))
}

func TestPreferencesNormalize(t *testing.T) {
	empty := ""
	p := Preferences{Filter: "bogus", Sort: "", ActiveTag: &empty}.Normalize()
	assert.Equal(t, DefaultPreferences().Filter, p.Filter)
	assert.Equal(t, SortCreation, p.Sort)
	assert.Nil(t, p.ActiveTag)
	assert.Equal(t, "", p.Tag())
}

func TestCloneDoesNotAlias(t *testing.T) {
	paused := 90
	orig := Task{ID: 1, Tags: []string{"Work"}, PomodoroPausedAt: &paused}
	c := orig.Clone()
	c.Tags[0] = "Home"
	*c.PomodoroPausedAt = 10

	assert.Equal(t, "Work", orig.Tags[0])
	assert.Equal(t, 90, *orig.PomodoroPausedAt)
}

func TestCloneKeepsEmptyTags(t *testing.T) {
	c := Task{ID: 1, Tags: []string{}}.Clone()
	require.NotNil(t, c.Tags)
	assert.Empty(t, c.Tags)

	out, err := json.Marshal(Task{ID: 2}.Clone())
	require.NoError(t, err)
	assert.Contains(t, string(out), `"tags":[]`)
}
