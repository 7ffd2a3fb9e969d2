package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dori/sweet/internal/api"
	"github.com/dori/sweet/internal/model"
)

func TestFetchTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "0xabc", r.URL.Query().Get("address"))
		_, _ = w.Write([]byte(`{"tasks":[{"id":2,"text":"b","completed":false,"priority":"high","dueDate":"2024-06-01","tags":["Work"],"pomodoros":1}]}`))
	}))
	defer srv.Close()

	tasks, err := New(srv.URL+"/", nil).FetchTasks(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(2), tasks[0].ID)
	assert.Equal(t, model.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, "2024-06-01", tasks[0].DueDate.String())
}

func TestReplaceTasksSendsBulkBody(t *testing.T) {
	var got api.BulkRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tasks/bulk", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	err := New(srv.URL, nil).ReplaceTasks(context.Background(), "0xabc", []model.Task{{ID: 1, Text: "a", Priority: model.PriorityLow, Tags: []string{}}})
	require.NoError(t, err)

	assert.Equal(t, "0xabc", got.Address)
	tasks, err := api.NormalizeTasks(got.Tasks)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Text)
}

func TestPreferencesRoundTrip(t *testing.T) {
	var stored *api.PreferencesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			var req api.PreferencesRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			stored = &req
			_, _ = w.Write([]byte(`{"success":true}`))
		case http.MethodGet:
			if stored == nil {
				_, _ = w.Write([]byte(`{"preferences":null}`))
				return
			}
			_ = json.NewEncoder(w).Encode(api.PreferencesResponse{Preferences: &model.Preferences{
				Filter: stored.Filter, Sort: stored.Sort, ActiveTag: stored.ActiveTag,
			}})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	ctx := context.Background()

	prefs, err := c.GetPreferences(ctx, "0xabc")
	require.NoError(t, err)
	assert.Nil(t, prefs)

	tag := "Work"
	require.NoError(t, c.PutPreferences(ctx, "0xabc", model.Preferences{Filter: model.FilterAll, Sort: model.SortPriority, ActiveTag: &tag}))

	prefs, err = c.GetPreferences(ctx, "0xabc")
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Equal(t, model.FilterAll, prefs.Filter)
	assert.Equal(t, "Work", prefs.Tag())
}

func TestErrorResponsesBecomeAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"address required"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).FetchTasks(context.Background(), "")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "address required", apiErr.Message)
}

func TestUnconfiguredClient(t *testing.T) {
	c := New("", nil)
	assert.False(t, c.Configured())

	_, err := c.FetchTasks(context.Background(), "0xabc")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
