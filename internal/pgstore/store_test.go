package pgstore

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/dori/sweet/internal/model"
)

// testcontainers panics without a Docker daemon, so probe first
func dockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping Postgres integration test in short mode")
	}
	if !dockerAvailable() {
		t.Skip("Docker not available, skipping Postgres integration tests")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("sweet"),
		postgres.WithUsername("sweet"),
		postgres.WithPassword("sweet"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("failed to start Postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := Open(ctx, dsn, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestPostgresStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, s.Migrate(ctx))
	})

	t.Run("replace and fetch tasks", func(t *testing.T) {
		due := model.NewDate(2024, 6, 1)
		done := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
		paused := 300
		in := []model.Task{
			{ID: 1715331600000, Text: "older", Priority: model.PriorityLow, Tags: []string{}},
			{ID: 1715331700000, Text: "newer", Priority: model.PriorityHigh, DueDate: &due,
				Tags: []string{"Work", "Study"}, Pomodoros: 2, Completed: true, CompletedAt: &done,
				PomodoroPausedAt: &paused},
		}
		require.NoError(t, s.ReplaceTasks(ctx, "0xabc", in))

		got, err := s.FetchTasks(ctx, "0xabc")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, in[1].ID, got[0].ID, "newest first")
		assert.Equal(t, "newer", got[0].Text)
		assert.Equal(t, model.PriorityHigh, got[0].Priority)
		assert.Equal(t, "2024-06-01", got[0].DueDate.String())
		assert.Equal(t, []string{"Work", "Study"}, got[0].Tags)
		assert.Equal(t, 2, got[0].Pomodoros)
		require.NotNil(t, got[0].CompletedAt)
		assert.True(t, done.Equal(*got[0].CompletedAt))
		require.NotNil(t, got[0].PomodoroPausedAt)
		assert.Equal(t, 300, *got[0].PomodoroPausedAt)
		assert.Equal(t, []string{}, got[1].Tags)

		// Replacing overwrites rather than merges
		require.NoError(t, s.ReplaceTasks(ctx, "0xabc", in[:1]))
		got, err = s.FetchTasks(ctx, "0xabc")
		require.NoError(t, err)
		assert.Len(t, got, 1)

		require.NoError(t, s.ReplaceTasks(ctx, "0xabc", nil))
		got, err = s.FetchTasks(ctx, "0xabc")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("snapshots are per address", func(t *testing.T) {
		require.NoError(t, s.ReplaceTasks(ctx, "0xaaa", []model.Task{{ID: 1, Text: "a", Priority: model.PriorityLow}}))
		require.NoError(t, s.ReplaceTasks(ctx, "0xbbb", []model.Task{{ID: 1, Text: "b", Priority: model.PriorityLow}}))

		a, err := s.FetchTasks(ctx, "0xaaa")
		require.NoError(t, err)
		require.Len(t, a, 1)
		assert.Equal(t, "a", a[0].Text)
	})

	t.Run("duplicate ids roll back the replace", func(t *testing.T) {
		require.NoError(t, s.ReplaceTasks(ctx, "0xdup", []model.Task{{ID: 9, Text: "keep", Priority: model.PriorityLow}}))

		err := s.ReplaceTasks(ctx, "0xdup", []model.Task{
			{ID: 5, Text: "x", Priority: model.PriorityLow},
			{ID: 5, Text: "y", Priority: model.PriorityLow},
		})
		require.Error(t, err)

		got, err := s.FetchTasks(ctx, "0xdup")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "keep", got[0].Text)
	})

	t.Run("preferences", func(t *testing.T) {
		prefs, err := s.GetPreferences(ctx, "0xnew")
		require.NoError(t, err)
		assert.Nil(t, prefs)

		tag := "Work"
		require.NoError(t, s.PutPreferences(ctx, "0xnew", model.Preferences{Filter: model.FilterAll, Sort: model.SortDueDate, ActiveTag: &tag}))
		prefs, err = s.GetPreferences(ctx, "0xnew")
		require.NoError(t, err)
		require.NotNil(t, prefs)
		assert.Equal(t, model.FilterAll, prefs.Filter)
		assert.Equal(t, model.SortDueDate, prefs.Sort)
		assert.Equal(t, "Work", prefs.Tag())
		assert.NotNil(t, prefs.UpdatedAt)

		require.NoError(t, s.PutPreferences(ctx, "0xnew", model.Preferences{Filter: "bogus", Sort: model.SortPriority}))
		prefs, err = s.GetPreferences(ctx, "0xnew")
		require.NoError(t, err)
		assert.Equal(t, model.FilterActive, prefs.Filter)
		assert.Nil(t, prefs.ActiveTag)
	})

	t.Run("profiles upsert by fid", func(t *testing.T) {
		require.NoError(t, s.UpsertProfile(ctx, model.Profile{FID: 7, Username: "dori"}))
		require.NoError(t, s.UpsertProfile(ctx, model.Profile{FID: 7, Username: "dori", DisplayName: "Dori", Bio: "hi"}))

		p, err := s.GetProfile(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Dori", p.DisplayName)
		assert.Equal(t, "hi", p.Bio)

		missing, err := s.GetProfile(ctx, 8)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("notifications", func(t *testing.T) {
		n, err := s.InsertNotification(ctx, model.Notification{
			UserID:  "u-1",
			Type:    model.NotificationTaskCreated,
			Title:   "New Task Created",
			Message: `Task "a" has been created`,
			Data:    []byte(`{"taskId":1,"title":"a"}`),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, n.ID)
		assert.False(t, n.CreatedAt.IsZero())

		list, err := s.ListNotifications(ctx, "u-1", 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, n.ID, list[0].ID)
		assert.Equal(t, model.NotificationTaskCreated, list[0].Type)
		assert.JSONEq(t, `{"taskId":1,"title":"a"}`, string(list[0].Data))
	})
}
