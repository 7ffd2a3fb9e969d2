// Package tasks holds the in-memory task collection of the connected
// identity and the pure projection that turns it into a display list.
package tasks

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dori/sweet/internal/model"
)

// Persister writes a full task snapshot for an address
type Persister interface {
	SaveTasks(address string, tasks []model.Task) error
}

// Store is the ordered task collection (newest first) of one identity.
// Every mutation is written through the Persister before it returns.
// Persistence failures are logged and otherwise ignored.
type Store struct {
	mu      sync.Mutex
	address string
	tasks   []model.Task
	lastID  int64

	persist Persister
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for IDs and completion stamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for swallowed persistence errors
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates an empty store for address. persist may be nil.
func NewStore(address string, persist Persister, opts ...Option) *Store {
	s := &Store{
		address: address,
		tasks:   []model.Task{},
		persist: persist,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Address returns the identity the store belongs to
func (s *Store) Address() string {
	return s.address
}

// Load sets the collection from a snapshot without writing it back
func (s *Store) Load(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(tasks)
}

// Replace sets the collection and persists it
func (s *Store) Replace(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(tasks)
	s.saveLocked()
}

func (s *Store) setLocked(tasks []model.Task) {
	s.tasks = model.CloneTasks(tasks)
	s.lastID = 0
	for _, t := range s.tasks {
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
	}
}

// Tasks returns a copy of the collection in stored order
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneTasks(s.tasks)
}

// Len returns the number of tasks
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Get returns a copy of the task with the given ID
func (s *Store) Get(id int64) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return model.Task{}, false
}

// Add prepends a new task. Text that trims to empty is ignored.
func (s *Store) Add(text string, priority model.Priority, dueDate *model.Date, tag string) (model.Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, false
	}
	if !priority.Valid() {
		priority = model.PriorityMedium
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := model.Task{
		ID:        s.nextIDLocked(),
		Text:      text,
		Priority:  priority,
		Tags:      []string{},
		Pomodoros: 0,
	}
	if dueDate != nil {
		d := *dueDate
		task.DueDate = &d
	}
	if tag = strings.TrimSpace(tag); tag != "" {
		task.Tags = []string{tag}
	}

	s.tasks = append([]model.Task{task}, s.tasks...)
	s.saveLocked()
	return task.Clone(), true
}

// Toggle flips completion and stamps or clears CompletedAt
func (s *Store) Toggle(id int64) (model.Task, bool) {
	return s.mutate(id, func(t *model.Task) {
		t.Completed = !t.Completed
		if t.Completed {
			now := s.now()
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
	})
}

// Edit replaces the text when the trimmed value is non-empty
func (s *Store) Edit(id int64, text string) (model.Task, bool) {
	text = strings.TrimSpace(text)
	return s.mutate(id, func(t *model.Task) {
		if text != "" {
			t.Text = text
		}
	})
}

// Delete removes the task. There is no undo.
func (s *Store) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.saveLocked()
	return true
}

// SetPriority updates a task's priority
func (s *Store) SetPriority(id int64, p model.Priority) (model.Task, bool) {
	if !p.Valid() {
		return model.Task{}, false
	}
	return s.mutate(id, func(t *model.Task) { t.Priority = p })
}

// CyclePriority moves a task to the next priority
func (s *Store) CyclePriority(id int64) (model.Task, bool) {
	return s.mutate(id, func(t *model.Task) { t.Priority = t.Priority.Next() })
}

// SetDueDate sets or clears (nil) a task's due date
func (s *Store) SetDueDate(id int64, d *model.Date) (model.Task, bool) {
	return s.mutate(id, func(t *model.Task) {
		if d == nil {
			t.DueDate = nil
			return
		}
		due := *d
		t.DueDate = &due
	})
}

// ToggleTag adds the tag when missing and removes it when present
func (s *Store) ToggleTag(id int64, tag string) (model.Task, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return model.Task{}, false
	}
	return s.mutate(id, func(t *model.Task) {
		for i, tg := range t.Tags {
			if tg == tag {
				t.Tags = append(t.Tags[:i:i], t.Tags[i+1:]...)
				return
			}
		}
		t.Tags = append(t.Tags, tag)
	})
}

// SetPausedRemaining records the remaining seconds of a paused focus
// session on id. Any other task's paused value is cleared since only one
// session exists at a time.
func (s *Store) SetPausedRemaining(id int64, seconds int) (model.Task, bool) {
	if seconds < 0 {
		seconds = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, false
	}
	for j := range s.tasks {
		s.tasks[j].PomodoroPausedAt = nil
	}
	secs := seconds
	s.tasks[i].PomodoroPausedAt = &secs
	s.saveLocked()
	return s.tasks[i].Clone(), true
}

// ClearPaused drops the paused focus snapshot of id
func (s *Store) ClearPaused(id int64) (model.Task, bool) {
	return s.mutate(id, func(t *model.Task) { t.PomodoroPausedAt = nil })
}

// CompletePomodoro counts a finished focus session on id
func (s *Store) CompletePomodoro(id int64) (model.Task, bool) {
	return s.mutate(id, func(t *model.Task) {
		t.Pomodoros++
		t.PomodoroPausedAt = nil
	})
}

// ActiveCount returns the number of tasks not yet completed
func (s *Store) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// CompletedOn returns how many tasks were completed on day
func (s *Store) CompletedOn(day time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.tasks {
		if s.tasks[i].CompletedOn(day) {
			n++
		}
	}
	return n
}

// DailyProgress returns the share (0..1) of all tasks completed on day
func (s *Store) DailyProgress(day time.Time) float64 {
	total := s.Len()
	if total == 0 {
		return 0
	}
	return float64(s.CompletedOn(day)) / float64(total)
}

// Tags returns the distinct tags in first-seen order
func (s *Store) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, t := range s.tasks {
		for _, tg := range t.Tags {
			if !seen[tg] {
				seen[tg] = true
				out = append(out, tg)
			}
		}
	}
	return out
}

func (s *Store) mutate(id int64, fn func(*model.Task)) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, false
	}
	fn(&s.tasks[i])
	s.saveLocked()
	return s.tasks[i].Clone(), true
}

func (s *Store) indexLocked(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// nextIDLocked returns the creation timestamp, bumped past the newest ID
// so two adds within the same millisecond stay distinguishable.
func (s *Store) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) saveLocked() {
	if s.persist == nil || s.address == "" {
		return
	}
	if err := s.persist.SaveTasks(s.address, model.CloneTasks(s.tasks)); err != nil {
		s.logger.Debug("task snapshot not saved",
			zap.String("address", s.address),
			zap.Error(err))
	}
}
