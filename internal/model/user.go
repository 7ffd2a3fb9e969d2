package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AvatarBaseURL is the placeholder image service used for generated avatars
const AvatarBaseURL = "https://placehold.co/40x40/fbcfe8/db2777"

// User is the connected wallet identity.
// DisplayName and AvatarURL are derived per session and never persisted.
type User struct {
	Address     string `json:"address"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// NewUser builds a user for address. A non-empty displayName from the
// identity provider wins over the shortened address.
func NewUser(address, displayName string) User {
	initialsSource := displayName
	if initialsSource == "" {
		initialsSource = safeSlice(address, 2, 4)
	}
	initials := strings.ToUpper(safeSlice(initialsSource, 0, 2))

	if displayName == "" {
		displayName = ShortAddress(address)
	}

	return User{
		Address:     address,
		DisplayName: displayName,
		AvatarURL:   fmt.Sprintf("%s?text=%s", AvatarBaseURL, initials),
	}
}

// ShortAddress renders an address as 0x1234...abcd
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

func safeSlice(s string, from, to int) string {
	if from > len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}

// Profile is a platform user row written by the user.connected webhook
type Profile struct {
	FID         int64     `json:"fid"`
	Username    string    `json:"username,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	PfpURL      string    `json:"pfp_url,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NotificationType identifies the task lifecycle event behind a notification
type NotificationType string

const (
	NotificationTaskCreated   NotificationType = "task_created"
	NotificationTaskUpdated   NotificationType = "task_updated"
	NotificationTaskCompleted NotificationType = "task_completed"
)

// Notification is a message row written by the task.* webhooks
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      json.RawMessage  `json:"data,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
