// Package focus implements the per-task pomodoro countdown.
//
// The countdown is driven by an absolute end time rather than by counting
// ticks, so a stalled or suspended ticker never makes the session drift:
// every recomputation derives the remaining seconds from the wall clock.
package focus

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dori/sweet/internal/model"
)

// Timer defaults
const (
	DefaultDuration = 25 * time.Minute
	TickInterval    = time.Second
)

var (
	// ErrNoTask is returned when no task is bound or the bound task is gone
	ErrNoTask = errors.New("no task bound to the focus timer")
	// ErrNotRunning is returned by Pause outside a running session
	ErrNotRunning = errors.New("focus timer is not running")
)

// State represents the timer state
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Tasks is the slice of the task store the engine mutates
type Tasks interface {
	Get(id int64) (model.Task, bool)
	SetPausedRemaining(id int64, seconds int) (model.Task, bool)
	ClearPaused(id int64) (model.Task, bool)
	CompletePomodoro(id int64) (model.Task, bool)
}

// Notifier announces a finished session
type Notifier interface {
	SendFocusComplete(taskText string) error
}

// Clock abstracts time for tests
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Status is a point-in-time view of the engine
type Status struct {
	TaskID    int64
	Bound     bool
	State     State
	Remaining int // seconds
	Duration  int // seconds of a full session
	Open      bool
	Sessions  int // completed sessions since the engine was created
}

// Engine is the focus timer of one session. At most one countdown runs at a time.
type Engine struct {
	mu       sync.Mutex
	tasks    Tasks
	notifier Notifier
	clock    Clock
	logger   *zap.Logger
	onUpdate func(Status)
	duration int
	interval time.Duration

	taskID    int64
	bound     bool
	state     State
	remaining int
	endTime   time.Time
	open      bool
	focused   bool
	sessions  int

	// Periodic recomputation handle. Owned exclusively by the engine.
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures an Engine
type Option func(*Engine)

// WithDuration sets the length of a full session
func WithDuration(d time.Duration) Option {
	return func(e *Engine) {
		if secs := int(d / time.Second); secs > 0 {
			e.duration = secs
		}
	}
}

// WithInterval sets how often the remaining time is recomputed
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithClock replaces the wall clock
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithNotifier sets who is told about finished sessions
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithOnUpdate registers a hook called after every recomputation. It runs on
// the ticker goroutine without the engine lock held and must not block.
func WithOnUpdate(fn func(Status)) Option {
	return func(e *Engine) { e.onUpdate = fn }
}

// WithLogger sets the engine logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an idle, unbound engine
func New(tasks Tasks, opts ...Option) *Engine {
	e := &Engine{
		tasks:    tasks,
		clock:    systemClock{},
		logger:   zap.NewNop(),
		duration: int(DefaultDuration / time.Second),
		interval: TickInterval,
		state:    StateIdle,
		focused:  true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.remaining = e.duration
	return e
}

// Open binds the engine to a task and shows it. Remaining time comes from the
// task's paused snapshot, else the full duration. Reopening the task whose
// session is running keeps it running; opening another task pauses it first.
func (e *Engine) Open(taskID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	task, ok := e.tasks.Get(taskID)
	if !ok {
		return ErrNoTask
	}

	if e.bound && e.state == StateRunning {
		if e.taskID == taskID {
			e.open = true
			return nil
		}
		e.pauseLocked()
	}

	e.stopLocked()
	e.taskID = taskID
	e.bound = true
	e.state = StateIdle
	e.remaining = e.duration
	if task.PomodoroPausedAt != nil {
		e.remaining = *task.PomodoroPausedAt
	}
	e.open = true
	return nil
}

// Start begins or resumes the countdown of the bound task
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.bound {
		return ErrNoTask
	}
	if e.state == StateRunning {
		return nil
	}
	if e.remaining <= 0 {
		e.remaining = e.duration
	}

	// A running session is not paused, so the snapshot goes away
	e.tasks.ClearPaused(e.taskID)

	e.endTime = e.clock.Now().Add(time.Duration(e.remaining) * time.Second)
	e.state = StateRunning
	e.startTickerLocked()

	e.logger.Debug("focus session started",
		zap.Int64("task_id", e.taskID),
		zap.Int("remaining", e.remaining))
	return nil
}

// Pause freezes a running countdown and records the remaining seconds on the task
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return ErrNotRunning
	}
	e.pauseLocked()
	return nil
}

func (e *Engine) pauseLocked() {
	e.stopLocked()
	e.remaining = max(0, e.leftLocked())
	e.tasks.SetPausedRemaining(e.taskID, e.remaining)
	e.state = StatePaused
}

// Toggle starts when idle or paused and pauses when running
func (e *Engine) Toggle() error {
	if e.Status().State == StateRunning {
		return e.Pause()
	}
	return e.Start()
}

// Reset stops the countdown, drops the task's paused snapshot and returns to a full session
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
	if e.bound {
		e.tasks.ClearPaused(e.taskID)
	}
	e.remaining = e.duration
	e.state = StateIdle
}

// Close hides the timer. A running session keeps counting down.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = false
}

// SetFocused records whether the viewing surface has input focus
func (e *Engine) SetFocused(focused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focused = focused
}

// Tick recomputes the remaining time and completes the session at zero.
// The engine calls it on its own interval; calling it directly is harmless.
func (e *Engine) Tick() {
	e.tick(nil)
}

func (e *Engine) tick(ctx context.Context) {
	e.mu.Lock()
	// A ticker that was cancelled while waiting for the lock is stale
	if ctx != nil && ctx.Err() != nil {
		e.mu.Unlock()
		return
	}
	if e.state != StateRunning {
		e.mu.Unlock()
		return
	}

	left := e.leftLocked()
	if left > 0 {
		e.remaining = left
		st := e.statusLocked()
		e.mu.Unlock()
		e.emit(st)
		return
	}

	e.stopLocked()
	task, ok := e.tasks.CompletePomodoro(e.taskID)
	e.remaining = e.duration
	e.state = StateCompleted
	e.sessions++
	shouldNotify := ok && e.notifier != nil && (!e.open || !e.focused)
	notifier := e.notifier
	st := e.statusLocked()
	e.mu.Unlock()

	e.emit(st)

	e.logger.Info("focus session completed",
		zap.Int64("task_id", task.ID),
		zap.Int("pomodoros", task.Pomodoros))

	if shouldNotify {
		if err := notifier.SendFocusComplete(task.Text); err != nil {
			e.logger.Debug("focus notification failed", zap.Error(err))
		}
	}
}

// Status returns the current engine state
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statusLocked()
}

func (e *Engine) statusLocked() Status {
	remaining := e.remaining
	if e.state == StateRunning {
		remaining = max(0, e.leftLocked())
	}
	return Status{
		TaskID:    e.taskID,
		Bound:     e.bound,
		State:     e.state,
		Remaining: remaining,
		Duration:  e.duration,
		Open:      e.open,
		Sessions:  e.sessions,
	}
}

// Shutdown releases the ticker for session teardown. A running session is
// paused first so its remaining time survives on the task.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if e.state == StateRunning {
		e.pauseLocked()
	}
	e.stopLocked()
	e.bound = false
	e.open = false
	e.taskID = 0
	e.state = StateIdle
	e.remaining = e.duration
	e.mu.Unlock()

	e.wg.Wait()
}

func (e *Engine) emit(st Status) {
	if e.onUpdate != nil {
		e.onUpdate(st)
	}
}

func (e *Engine) leftLocked() int {
	return int(math.Round(float64(e.endTime.Sub(e.clock.Now())) / float64(time.Second)))
}

func (e *Engine) startTickerLocked() {
	e.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	interval := e.interval

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.tick(ctx)
			}
		}
	}()
}

func (e *Engine) stopLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}
