package model

import (
	"strings"
	"time"
)

// Priority represents task priority level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank returns a numeric weight for sorting by priority.
// Unknown priorities rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Next returns the priority that follows p when cycling low → medium → high → low
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// ParsePriority parses a priority name, accepting the short forms used by quick add
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return PriorityLow, true
	case "medium", "med", "m":
		return PriorityMedium, true
	case "high", "hi", "h":
		return PriorityHigh, true
	}
	return "", false
}

// Task represents a todo item
type Task struct {
	ID               int64      `json:"id"` // Creation time in unix milliseconds
	Text             string     `json:"text"`
	Completed        bool       `json:"completed"`
	Priority         Priority   `json:"priority"`
	DueDate          *Date      `json:"dueDate"`
	Tags             []string   `json:"tags"`
	Pomodoros        int        `json:"pomodoros"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	PomodoroPausedAt *int       `json:"pomodoroPausedAt,omitempty"` // Remaining seconds of a paused focus session
}

// CreatedAt returns the creation time encoded in the task ID
func (t *Task) CreatedAt() time.Time {
	return time.UnixMilli(t.ID)
}

// HasTag reports whether the task carries the given tag
func (t *Task) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}

// IsOverdue returns true if the task is not completed and its due date is before today
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return t.DueDate.Before(DateOf(now))
}

// CompletedOn returns true if the task was completed on the same calendar day as day
func (t *Task) CompletedOn(day time.Time) bool {
	if !t.Completed || t.CompletedAt == nil {
		return false
	}
	c := t.CompletedAt.In(day.Location())
	return c.Year() == day.Year() && c.YearDay() == day.YearDay()
}

// Clone returns a deep copy so callers can't alias the store's slices and pointers
func (t Task) Clone() Task {
	c := t
	c.Tags = append([]string{}, t.Tags...)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	if t.PomodoroPausedAt != nil {
		p := *t.PomodoroPausedAt
		c.PomodoroPausedAt = &p
	}
	return c
}

// CloneTasks deep-copies a task slice
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
