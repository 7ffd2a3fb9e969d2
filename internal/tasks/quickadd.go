package tasks

import (
	"strings"
	"time"

	"github.com/dori/sweet/internal/model"
)

// QuickAdd is a task described in one line, e.g.
// "Review PR @Work !high due:tomorrow"
type QuickAdd struct {
	Text     string
	Priority model.Priority
	DueDate  *model.Date
	Tags     []string
}

// Tag returns the first parsed tag, or ""
func (q QuickAdd) Tag() string {
	if len(q.Tags) == 0 {
		return ""
	}
	return q.Tags[0]
}

// ParseQuickAdd splits tags (@tag), a priority (!low/!medium/!high) and a
// due date (due:<date>) out of text. Tokens that don't parse stay in the text.
func ParseQuickAdd(text string, now time.Time) QuickAdd {
	task := QuickAdd{Priority: model.PriorityMedium}

	var titleParts []string
	for _, word := range strings.Fields(text) {
		switch {
		case strings.HasPrefix(word, "@") && len(word) > 1:
			tag := strings.TrimPrefix(word, "@")
			if !contains(task.Tags, tag) {
				task.Tags = append(task.Tags, tag)
			}

		case strings.HasPrefix(word, "!"):
			if p, ok := model.ParsePriority(strings.TrimPrefix(word, "!")); ok {
				task.Priority = p
			} else {
				titleParts = append(titleParts, word)
			}

		case strings.HasPrefix(strings.ToLower(word), "due:"):
			if d := ParseDue(word[len("due:"):], now); d != nil {
				task.DueDate = d
			} else {
				titleParts = append(titleParts, word)
			}

		default:
			titleParts = append(titleParts, word)
		}
	}

	task.Text = strings.Join(titleParts, " ")
	return task
}

// ParseDue understands today, tomorrow, weekday names, nextweek and a few
// numeric layouts. It returns nil for anything else.
func ParseDue(s string, now time.Time) *model.Date {
	today := model.DateOf(now)

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil
	case "today":
		return &today
	case "tomorrow", "tom":
		d := today.AddDays(1)
		return &d
	case "nextweek":
		d := today.AddDays(7)
		return &d
	case "monday", "mon":
		return nextWeekday(now, time.Monday)
	case "tuesday", "tue":
		return nextWeekday(now, time.Tuesday)
	case "wednesday", "wed":
		return nextWeekday(now, time.Wednesday)
	case "thursday", "thu":
		return nextWeekday(now, time.Thursday)
	case "friday", "fri":
		return nextWeekday(now, time.Friday)
	case "saturday", "sat":
		return nextWeekday(now, time.Saturday)
	case "sunday", "sun":
		return nextWeekday(now, time.Sunday)
	}

	if d, err := model.ParseDate(s); err == nil {
		return &d
	}

	formats := []string{
		"01/02/2006",
		"01-02-2006",
		"Jan 2, 2006",
		"Jan 2",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			// No year given
			if t.Year() == 0 {
				t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
			d := model.DateOf(t)
			return &d
		}
	}
	return nil
}

func nextWeekday(now time.Time, day time.Weekday) *model.Date {
	daysUntil := int(day - now.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	d := model.DateOf(now).AddDays(daysUntil)
	return &d
}

// FormatDue renders a due date relative to now
func FormatDue(d model.Date, now time.Time) string {
	today := model.DateOf(now)

	switch {
	case d.Compare(today) == 0:
		return "today"
	case d.Compare(today.AddDays(1)) == 0:
		return "tomorrow"
	}

	if d.Time().Year() == now.Year() {
		return d.Time().Format("Mon, Jan 2")
	}
	return d.Time().Format("Jan 2, 2006")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
