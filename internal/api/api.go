// Package api holds the JSON bodies exchanged between the sync client and
// the server.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dori/sweet/internal/model"
)

// Messages returned to clients on validation failures
const (
	MsgAddressRequired  = "address required"
	MsgBulkRequired     = "address and tasks required"
	MsgInternalError    = "Internal server error"
	MsgInvalidTaskEntry = "invalid task entry"
)

// now stamps completed tasks that arrive without a usable completion time
var now = time.Now

// ErrNotArray is returned when the bulk tasks field is missing or not an array
var ErrNotArray = errors.New("tasks is not an array")

// TasksResponse is the body of GET /api/tasks
type TasksResponse struct {
	Tasks []model.Task `json:"tasks"`
}

// BulkRequest is the body of POST /api/tasks/bulk. Tasks stays raw so a
// missing field and a non-array are told apart from an empty list.
type BulkRequest struct {
	Address string          `json:"address"`
	Tasks   json.RawMessage `json:"tasks"`
}

// PreferencesResponse is the body of GET /api/preferences
type PreferencesResponse struct {
	Preferences *model.Preferences `json:"preferences"`
}

// PreferencesRequest is the body of PUT /api/preferences
type PreferencesRequest struct {
	Address   string       `json:"address"`
	Filter    model.Filter `json:"filter"`
	Sort      model.Sort   `json:"sort"`
	ActiveTag *string      `json:"active_tag"`
}

// Preferences returns the request as model preferences
func (r PreferencesRequest) Preferences() model.Preferences {
	return model.Preferences{Filter: r.Filter, Sort: r.Sort, ActiveTag: r.ActiveTag}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is the body of writes that succeeded
type SuccessResponse struct {
	Success bool `json:"success"`
}

// NewBulkRequest builds the bulk body for a task snapshot
func NewBulkRequest(address string, tasks []model.Task) (BulkRequest, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return BulkRequest{}, fmt.Errorf("failed to encode tasks: %w", err)
	}
	return BulkRequest{Address: address, Tasks: raw}, nil
}

// NormalizeTasks decodes the loosely typed task array of a bulk request
func NormalizeTasks(raw json.RawMessage) ([]model.Task, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrNotArray
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, ErrNotArray
	}

	out := make([]model.Task, 0, len(entries))
	for i, entry := range entries {
		t, err := NormalizeTask(entry)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// NormalizeTask applies the server's defaults to one client task: priority
// falls back to medium, tags to empty, pomodoros to zero and unparseable
// dates to null. A completed task always leaves with a completion time,
// read from RFC 3339 or unix milliseconds and stamped now otherwise.
func NormalizeTask(raw json.RawMessage) (model.Task, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return model.Task{}, errors.New(MsgInvalidTaskEntry)
	}

	id, ok := toInt64(fields["id"])
	if !ok {
		return model.Task{}, fmt.Errorf("%s: id", MsgInvalidTaskEntry)
	}

	t := model.Task{
		ID:        id,
		Text:      toString(fields["text"]),
		Completed: truthy(fields["completed"]),
		Priority:  model.PriorityMedium,
		Tags:      []string{},
	}

	if p := model.Priority(toString(fields["priority"])); p.Valid() {
		t.Priority = p
	}
	if s := toString(fields["dueDate"]); s != "" {
		if d, err := model.ParseDate(s); err == nil {
			t.DueDate = &d
		}
	}
	if list, ok := fields["tags"].([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				t.Tags = append(t.Tags, s)
			}
		}
	}
	if n, ok := toNumber(fields["pomodoros"]); ok && n >= 0 {
		t.Pomodoros = int(n)
	}
	if t.Completed {
		ts, ok := toTime(fields["completedAt"])
		if !ok {
			ts = now().UTC()
		}
		t.CompletedAt = &ts
	}
	if n, ok := toNumber(fields["pomodoroPausedAt"]); ok {
		secs := int(n)
		t.PomodoroPausedAt = &secs
	}
	return t, nil
}

// toTime reads an RFC 3339 string or a unix millisecond number
func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		ts, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return time.Time{}, false
		}
		return ts.UTC(), true
	case json.Number:
		ms, ok := toInt64(x)
		if !ok {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

// toNumber accepts JSON numbers only
func toNumber(v any) (int64, bool) {
	if n, ok := v.(json.Number); ok {
		return toInt64(n)
	}
	return 0, false
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b != ""
	case json.Number:
		f, err := b.Float64()
		return err == nil && f != 0
	case nil:
		return false
	}
	return true
}
