// Package webhook decodes platform events posted to the server.
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dori/sweet/internal/model"
)

// Event types posted by the platform
const (
	TypeUserConnected    = "user.connected"
	TypeUserDisconnected = "user.disconnected"
	TypeTaskCreated      = "task.created"
	TypeTaskUpdated      = "task.updated"
	TypeTaskCompleted    = "task.completed"
)

// Event is one decoded webhook payload. The concrete type carries only the
// fields its event needs.
type Event interface {
	Type() string
}

// UserConnected upserts the platform profile
type UserConnected struct {
	Profile model.Profile
}

// UserDisconnected is only logged
type UserDisconnected struct {
	FID int64
}

// TaskRef identifies the task a lifecycle event is about
type TaskRef struct {
	TaskID json.RawMessage
	UserID string
	Title  string
}

type TaskCreated struct {
	TaskRef
	Description string
}

type TaskUpdated struct {
	TaskRef
	Changes json.RawMessage
}

type TaskCompleted struct {
	TaskRef
}

// Unrecognized is any event type the server does not handle
type Unrecognized struct {
	Kind string
}

func (UserConnected) Type() string    { return TypeUserConnected }
func (UserDisconnected) Type() string { return TypeUserDisconnected }
func (TaskCreated) Type() string      { return TypeTaskCreated }
func (TaskUpdated) Type() string      { return TypeTaskUpdated }
func (TaskCompleted) Type() string    { return TypeTaskCompleted }
func (u Unrecognized) Type() string   { return u.Kind }

type payload struct {
	Type        string          `json:"type"`
	FID         json.RawMessage `json:"fid"`
	Username    string          `json:"username"`
	DisplayName string          `json:"displayName"`
	PfpURL      string          `json:"pfpUrl"`
	Bio         string          `json:"bio"`
	TaskID      json.RawMessage `json:"taskId"`
	UserID      json.RawMessage `json:"userId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Changes     json.RawMessage `json:"changes"`
}

// Decode parses a webhook body. Only malformed JSON is an error; unknown
// types decode to Unrecognized.
func Decode(body []byte) (Event, error) {
	var p payload
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	ref := TaskRef{TaskID: p.TaskID, UserID: rawString(p.UserID), Title: p.Title}

	switch p.Type {
	case TypeUserConnected:
		return UserConnected{Profile: model.Profile{
			FID:         fid(p.FID),
			Username:    p.Username,
			DisplayName: p.DisplayName,
			PfpURL:      p.PfpURL,
			Bio:         p.Bio,
		}}, nil
	case TypeUserDisconnected:
		return UserDisconnected{FID: fid(p.FID)}, nil
	case TypeTaskCreated:
		return TaskCreated{TaskRef: ref, Description: p.Description}, nil
	case TypeTaskUpdated:
		return TaskUpdated{TaskRef: ref, Changes: p.Changes}, nil
	case TypeTaskCompleted:
		return TaskCompleted{TaskRef: ref}, nil
	default:
		return Unrecognized{Kind: p.Type}, nil
	}
}

type notificationData struct {
	TaskID  json.RawMessage `json:"taskId,omitempty"`
	Title   string          `json:"title"`
	Changes json.RawMessage `json:"changes,omitempty"`
}

// NotificationFor builds the notification row for a task lifecycle event.
// It returns false for events that produce no notification.
func NotificationFor(e Event) (model.Notification, bool) {
	var (
		ref     TaskRef
		changes json.RawMessage
		n       model.Notification
	)

	switch ev := e.(type) {
	case TaskCreated:
		ref = ev.TaskRef
		n.Type, n.Title = model.NotificationTaskCreated, "New Task Created"
		n.Message = fmt.Sprintf("Task \"%s\" has been created", ev.Title)
	case TaskUpdated:
		ref, changes = ev.TaskRef, ev.Changes
		n.Type, n.Title = model.NotificationTaskUpdated, "Task Updated"
		n.Message = fmt.Sprintf("Task \"%s\" has been updated", ev.Title)
	case TaskCompleted:
		ref = ev.TaskRef
		n.Type, n.Title = model.NotificationTaskCompleted, "Task Completed"
		n.Message = fmt.Sprintf("Task \"%s\" has been completed", ev.Title)
	default:
		return model.Notification{}, false
	}

	n.UserID = ref.UserID
	data, err := json.Marshal(notificationData{TaskID: ref.TaskID, Title: ref.Title, Changes: changes})
	if err == nil {
		n.Data = data
	}
	return n, true
}

func fid(raw json.RawMessage) int64 {
	v, err := strconv.ParseInt(rawString(raw), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// rawString renders an id that may arrive as a JSON string or number
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
