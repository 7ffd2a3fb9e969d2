package model

import "time"

// Filter selects which tasks are shown
type Filter string

const (
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
	FilterAll       Filter = "all"
)

// Valid reports whether f is a known filter
func (f Filter) Valid() bool {
	switch f {
	case FilterActive, FilterCompleted, FilterAll:
		return true
	}
	return false
}

// Next cycles active → completed → all → active
func (f Filter) Next() Filter {
	switch f {
	case FilterActive:
		return FilterCompleted
	case FilterCompleted:
		return FilterAll
	default:
		return FilterActive
	}
}

// Sort selects the display order
type Sort string

const (
	SortCreation Sort = "creation"
	SortDueDate  Sort = "dueDate"
	SortPriority Sort = "priority"
)

// Valid reports whether s is a known sort
func (s Sort) Valid() bool {
	switch s {
	case SortCreation, SortDueDate, SortPriority:
		return true
	}
	return false
}

// Next cycles creation → dueDate → priority → creation
func (s Sort) Next() Sort {
	switch s {
	case SortCreation:
		return SortDueDate
	case SortDueDate:
		return SortPriority
	default:
		return SortCreation
	}
}

// Preferences holds the per-user view settings
type Preferences struct {
	Filter    Filter     `json:"filter"`
	Sort      Sort       `json:"sort"`
	ActiveTag *string    `json:"active_tag"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// DefaultPreferences returns the settings of a fresh identity
func DefaultPreferences() Preferences {
	return Preferences{
		Filter: FilterActive,
		Sort:   SortCreation,
	}
}

// Normalize replaces unknown filter or sort values with the defaults
func (p Preferences) Normalize() Preferences {
	if !p.Filter.Valid() {
		p.Filter = FilterActive
	}
	if !p.Sort.Valid() {
		p.Sort = SortCreation
	}
	if p.ActiveTag != nil && *p.ActiveTag == "" {
		p.ActiveTag = nil
	}
	return p
}

// Tag returns the active tag or "" when none is set
func (p Preferences) Tag() string {
	if p.ActiveTag == nil {
		return ""
	}
	return *p.ActiveTag
}
