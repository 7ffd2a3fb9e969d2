package focus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dori/sweet/internal/model"
	"github.com/dori/sweet/internal/tasks"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (n *recordingNotifier) SendFocusComplete(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
	return nil
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.texts...)
}

type fixture struct {
	engine   *Engine
	store    *tasks.Store
	clock    *fakeClock
	notifier *recordingNotifier
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store:    tasks.NewStore("0xabc", nil),
		clock:    newFakeClock(),
		notifier: &recordingNotifier{},
	}
	// The background ticker is slowed down so tests drive time through Tick
	base := []Option{WithClock(f.clock), WithNotifier(f.notifier), WithInterval(time.Hour)}
	f.engine = New(f.store, append(base, opts...)...)
	t.Cleanup(f.engine.Shutdown)
	return f
}

func (f *fixture) add(t *testing.T, text string) model.Task {
	t.Helper()
	task, ok := f.store.Add(text, model.PriorityMedium, nil, "")
	require.True(t, ok)
	return task
}

func TestUnboundEngine(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.engine.Open(42), ErrNoTask)
	assert.ErrorIs(t, f.engine.Start(), ErrNoTask)
	assert.ErrorIs(t, f.engine.Pause(), ErrNotRunning)

	st := f.engine.Status()
	assert.False(t, st.Bound)
	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, int(DefaultDuration/time.Second), st.Remaining)
}

func TestOpenUsesFullDurationOrPausedSnapshot(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "fresh")
	b := f.add(t, "paused earlier")
	f.store.SetPausedRemaining(b.ID, 300)

	require.NoError(t, f.engine.Open(a.ID))
	assert.Equal(t, 1500, f.engine.Status().Remaining)

	require.NoError(t, f.engine.Open(b.ID))
	st := f.engine.Status()
	assert.Equal(t, 300, st.Remaining)
	assert.Equal(t, StateIdle, st.State)
	assert.True(t, st.Open)
}

func TestPauseRecordsRemainingAndResumeContinues(t *testing.T) {
	f := newFixture(t)
	task := f.add(t, "write")

	require.NoError(t, f.engine.Open(task.ID))
	require.NoError(t, f.engine.Start())

	f.clock.Advance(10 * time.Second)
	f.engine.Tick()
	assert.Equal(t, 1490, f.engine.Status().Remaining)

	require.NoError(t, f.engine.Pause())
	got, _ := f.store.Get(task.ID)
	require.NotNil(t, got.PomodoroPausedAt)
	assert.Equal(t, 1490, *got.PomodoroPausedAt)

	// Paused time does not count
	f.clock.Advance(time.Minute)
	assert.Equal(t, 1490, f.engine.Status().Remaining)
	assert.ErrorIs(t, f.engine.Pause(), ErrNotRunning)

	require.NoError(t, f.engine.Start())
	got, _ = f.store.Get(task.ID)
	assert.Nil(t, got.PomodoroPausedAt, "a running session has no paused snapshot")

	f.clock.Advance(90 * time.Second)
	assert.Equal(t, 1400, f.engine.Status().Remaining)
}

func TestCompletionCountsPomodoroAndResets(t *testing.T) {
	f := newFixture(t, WithDuration(5*time.Second))
	task := f.add(t, "read chapter")

	require.NoError(t, f.engine.Open(task.ID))
	require.NoError(t, f.engine.Start())

	f.clock.Advance(4400 * time.Millisecond)
	f.engine.Tick()
	st := f.engine.Status()
	assert.Equal(t, StateRunning, st.State)
	assert.Equal(t, 1, st.Remaining, "0.6s rounds up")

	f.clock.Advance(200 * time.Millisecond)
	f.engine.Tick()

	st = f.engine.Status()
	assert.Equal(t, StateCompleted, st.State)
	assert.Equal(t, 5, st.Remaining)
	assert.Equal(t, 1, st.Sessions)

	got, _ := f.store.Get(task.ID)
	assert.Equal(t, 1, got.Pomodoros)
	assert.Nil(t, got.PomodoroPausedAt)

	// Visible and focused, so nobody is notified
	assert.Empty(t, f.notifier.sent())

	// Further ticks are no-ops
	f.clock.Advance(time.Minute)
	f.engine.Tick()
	got, _ = f.store.Get(task.ID)
	assert.Equal(t, 1, got.Pomodoros)
}

func TestNotifiesWhenUnfocusedOrClosed(t *testing.T) {
	f := newFixture(t, WithDuration(5*time.Second))
	task := f.add(t, "deep work")

	require.NoError(t, f.engine.Open(task.ID))
	f.engine.SetFocused(false)
	require.NoError(t, f.engine.Start())
	f.clock.Advance(5 * time.Second)
	f.engine.Tick()
	assert.Equal(t, []string{"deep work"}, f.notifier.sent())

	f.engine.SetFocused(true)
	require.NoError(t, f.engine.Start())
	f.engine.Close()
	assert.Equal(t, StateRunning, f.engine.Status().State, "closing keeps the session running")

	f.clock.Advance(5 * time.Second)
	f.engine.Tick()
	assert.Equal(t, []string{"deep work", "deep work"}, f.notifier.sent())

	got, _ := f.store.Get(task.ID)
	assert.Equal(t, 2, got.Pomodoros)
}

func TestOpeningAnotherTaskPausesRunningSession(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "a")
	b := f.add(t, "b")

	require.NoError(t, f.engine.Open(a.ID))
	require.NoError(t, f.engine.Start())
	f.clock.Advance(100 * time.Second)

	// Reopening the running task keeps it going
	f.engine.Close()
	require.NoError(t, f.engine.Open(a.ID))
	assert.Equal(t, StateRunning, f.engine.Status().State)

	require.NoError(t, f.engine.Open(b.ID))
	st := f.engine.Status()
	assert.Equal(t, b.ID, st.TaskID)
	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, 1500, st.Remaining)

	gotA, _ := f.store.Get(a.ID)
	require.NotNil(t, gotA.PomodoroPausedAt)
	assert.Equal(t, 1400, *gotA.PomodoroPausedAt)
}

func TestResetClearsSnapshot(t *testing.T) {
	f := newFixture(t)
	task := f.add(t, "a")

	require.NoError(t, f.engine.Open(task.ID))
	require.NoError(t, f.engine.Toggle())
	f.clock.Advance(30 * time.Second)
	require.NoError(t, f.engine.Toggle())
	assert.Equal(t, StatePaused, f.engine.Status().State)

	f.engine.Reset()
	st := f.engine.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, 1500, st.Remaining)

	got, _ := f.store.Get(task.ID)
	assert.Nil(t, got.PomodoroPausedAt)
}

func TestShutdownPausesRunningSession(t *testing.T) {
	f := newFixture(t)
	task := f.add(t, "a")

	require.NoError(t, f.engine.Open(task.ID))
	require.NoError(t, f.engine.Start())
	f.clock.Advance(60 * time.Second)

	f.engine.Shutdown()

	st := f.engine.Status()
	assert.False(t, st.Bound)
	assert.Equal(t, StateIdle, st.State)

	got, _ := f.store.Get(task.ID)
	require.NotNil(t, got.PomodoroPausedAt)
	assert.Equal(t, 1440, *got.PomodoroPausedAt)
}

func TestBackgroundTickerCompletesSession(t *testing.T) {
	store := tasks.NewStore("0xabc", nil)
	task, _ := store.Add("short", model.PriorityLow, nil, "")

	e := New(store, WithDuration(time.Second), WithInterval(10*time.Millisecond))
	defer e.Shutdown()

	require.NoError(t, e.Open(task.ID))
	require.NoError(t, e.Start())

	require.Eventually(t, func() bool {
		return e.Status().State == StateCompleted
	}, 3*time.Second, 10*time.Millisecond)

	got, _ := store.Get(task.ID)
	assert.Equal(t, 1, got.Pomodoros)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestOnUpdateReceivesRecomputations(t *testing.T) {
	var (
		mu      sync.Mutex
		updates []Status
	)
	f := newFixture(t, WithDuration(10*time.Second), WithOnUpdate(func(st Status) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, st)
	}))
	task := f.add(t, "a")

	require.NoError(t, f.engine.Open(task.ID))
	require.NoError(t, f.engine.Start())
	f.clock.Advance(3 * time.Second)
	f.engine.Tick()
	f.clock.Advance(7 * time.Second)
	f.engine.Tick()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, updates, 2)
	assert.Equal(t, 7, updates[0].Remaining)
	assert.Equal(t, StateRunning, updates[0].State)
	assert.Equal(t, StateCompleted, updates[1].State)
	assert.Equal(t, 1, updates[1].Sessions)
}
