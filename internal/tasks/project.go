package tasks

import (
	"cmp"
	"slices"

	"github.com/dori/sweet/internal/model"
)

// Project derives the displayed sequence from a collection and the view
// preferences. It never mutates tasks and always returns fresh copies.
func Project(tasks []model.Task, prefs model.Preferences) []model.Task {
	prefs = prefs.Normalize()
	tag := prefs.Tag()

	out := make([]model.Task, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if !matchesFilter(t, prefs.Filter) {
			continue
		}
		if tag != "" && !t.HasTag(tag) {
			continue
		}
		out = append(out, t.Clone())
	}

	slices.SortStableFunc(out, comparator(prefs.Sort))
	return out
}

func matchesFilter(t *model.Task, f model.Filter) bool {
	switch f {
	case model.FilterCompleted:
		return t.Completed
	case model.FilterActive:
		return !t.Completed
	default:
		return true
	}
}

func comparator(s model.Sort) func(a, b model.Task) int {
	switch s {
	case model.SortPriority:
		return func(a, b model.Task) int {
			return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
		}
	case model.SortDueDate:
		return func(a, b model.Task) int {
			switch {
			case a.DueDate != nil && b.DueDate != nil:
				return a.DueDate.Compare(*b.DueDate)
			case a.DueDate != nil:
				return -1
			case b.DueDate != nil:
				return 1
			}
			return 0
		}
	default:
		return func(a, b model.Task) int {
			return cmp.Compare(b.ID, a.ID)
		}
	}
}
