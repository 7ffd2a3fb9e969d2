// Package notify raises desktop notifications through notify-send.
package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// args builds the notify-send command line
func (n Notification) args(appName string) []string {
	args := []string{"-u", n.Urgency.String()}
	if n.Timeout > 0 {
		args = append(args, "-t", strconv.FormatInt(n.Timeout.Milliseconds(), 10))
	}
	if n.Icon != "" {
		args = append(args, "-i", n.Icon)
	}
	args = append(args, "-a", appName, n.Title)
	if n.Body != "" {
		args = append(args, n.Body)
	}
	return args
}

// Runner executes the notification command
type Runner func(name string, args ...string) error

func execRunner(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Notifier sends desktop notifications. A disabled notifier drops them.
type Notifier struct {
	enabled bool
	appName string
	run     Runner
}

// NewNotifier creates an enabled notifier
func NewNotifier() *Notifier {
	return &Notifier{
		enabled: true,
		appName: "sweet",
		run:     execRunner,
	}
}

// WithRunner replaces the command runner, mostly for tests
func (n *Notifier) WithRunner(r Runner) *Notifier {
	n.run = r
	return n
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Send shows notification unless the notifier is disabled
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}
	if err := n.run("notify-send", notification.args(n.appName)...); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// SendFocusComplete announces the end of a focus session
func (n *Notifier) SendFocusComplete(taskText string) error {
	return n.Send(Notification{
		Title:   "Time's up!",
		Body:    fmt.Sprintf("Focus session for \"%s\" is complete! Time for a break.", taskText),
		Urgency: UrgencyNormal,
		Timeout: 10 * time.Second,
		Icon:    "alarm-symbolic",
	})
}

// SendOverdue reminds about tasks whose due date has passed
func (n *Notifier) SendOverdue(count int) error {
	if count <= 0 {
		return nil
	}
	body := "1 task is overdue"
	if count > 1 {
		body = fmt.Sprintf("%d tasks are overdue", count)
	}
	return n.Send(Notification{
		Title:   "My Sweet Tasks",
		Body:    body,
		Urgency: UrgencyCritical,
		Timeout: 15 * time.Second,
		Icon:    "emblem-important-symbolic",
	})
}
