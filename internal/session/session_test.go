package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dori/sweet/internal/db"
	"github.com/dori/sweet/internal/focus"
	"github.com/dori/sweet/internal/identity"
	"github.com/dori/sweet/internal/model"
)

const (
	alice = "0xAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaa"
	bob   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "sweet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func newSession(t *testing.T, provider identity.Provider, local LocalStore, opts ...Option) *Session {
	t.Helper()
	s := New(provider, local, opts...)
	t.Cleanup(s.Close)
	return s
}

// fakeRemote keeps one snapshot per address in memory
type fakeRemote struct {
	mu    sync.Mutex
	tasks map[string][]model.Task
	prefs map[string]model.Preferences
	err   error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{tasks: map[string][]model.Task{}, prefs: map[string]model.Preferences{}}
}

func (r *fakeRemote) Configured() bool { return true }

func (r *fakeRemote) FetchTasks(ctx context.Context, address string) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return model.CloneTasks(r.tasks[identity.Normalize(address)]), nil
}

func (r *fakeRemote) ReplaceTasks(ctx context.Context, address string, tasks []model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.tasks[identity.Normalize(address)] = model.CloneTasks(tasks)
	return nil
}

func (r *fakeRemote) GetPreferences(ctx context.Context, address string) (*model.Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.prefs[identity.Normalize(address)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeRemote) PutPreferences(ctx context.Context, address string, prefs model.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.prefs[identity.Normalize(address)] = prefs
	return nil
}

func (r *fakeRemote) snapshot(address string) []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks[identity.Normalize(address)]
}

func texts(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

func TestConnectWithoutWallet(t *testing.T) {
	s := newSession(t, identity.NewStatic("", ""), openDB(t))

	_, err := s.Connect(context.Background())
	assert.ErrorIs(t, err, identity.ErrNoProvider)
	assert.False(t, s.Connected())
	assert.Nil(t, s.Tasks())
	assert.Empty(t, s.View())
}

func TestConnectRejected(t *testing.T) {
	s := newSession(t, identity.NewStatic(alice, "").Rejecting(), openDB(t))

	_, err := s.Connect(context.Background())
	assert.ErrorIs(t, err, identity.ErrRejected)
	assert.False(t, s.Connected())
}

func TestConnectBuildsUser(t *testing.T) {
	s := newSession(t, identity.NewStatic(alice, ""), openDB(t))

	user, err := s.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, alice, user.Address)
	assert.Equal(t, "0xAAAA...aaaa", user.DisplayName)
	assert.NotNil(t, s.Tasks())
	assert.NotNil(t, s.Focus())
	assert.Equal(t, model.DefaultPreferences(), s.Preferences())
}

func TestIdentitySwitchDoesNotBleed(t *testing.T) {
	ctx := context.Background()
	provider := identity.NewStatic(alice, "")
	s := newSession(t, provider, openDB(t))

	_, err := s.Connect(ctx)
	require.NoError(t, err)
	s.Tasks().Add("alice's task", model.PriorityHigh, nil, "Work")
	require.NoError(t, s.SetFilter(model.FilterAll))
	require.NoError(t, s.SetActiveTag("Work"))

	provider.Switch(bob)
	s.AccountsChanged(ctx, []string{bob})
	assert.False(t, s.Connected(), "a different account disconnects")
	assert.Equal(t, model.DefaultPreferences(), s.Preferences())

	_, err = s.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Tasks().Len())
	assert.Equal(t, model.DefaultPreferences(), s.Preferences())
	s.Tasks().Add("bob's task", model.PriorityLow, nil, "")

	provider.Switch(alice)
	s.Disconnect(ctx)
	_, err = s.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice's task"}, texts(s.Tasks().Tasks()))
	assert.Equal(t, model.FilterAll, s.Preferences().Filter)
	assert.Equal(t, "Work", s.Preferences().Tag())
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	local := openDB(t)
	provider := identity.NewStatic(alice, "")

	first := New(provider, local)
	_, err := first.Connect(ctx)
	require.NoError(t, err)
	first.Tasks().Add("survives restart", model.PriorityMedium, nil, "")
	first.Close()

	second := newSession(t, provider, local)
	ok, err := second.Resume(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"survives restart"}, texts(second.Tasks().Tasks()))

	second.Disconnect(ctx)
	last, err := local.LastAddress()
	require.NoError(t, err)
	assert.Empty(t, last)

	third := newSession(t, provider, local)
	ok, err = third.Resume(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResumeWithDifferentAccountDisconnects(t *testing.T) {
	ctx := context.Background()
	local := openDB(t)
	require.NoError(t, local.SetLastAddress(alice))

	s := newSession(t, identity.NewStatic(bob, ""), local)
	ok, err := s.Resume(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, s.Connected())

	last, _ := local.LastAddress()
	assert.Empty(t, last)
}

func TestResumeIsCaseInsensitive(t *testing.T) {
	local := openDB(t)
	require.NoError(t, local.SetLastAddress(identity.Normalize(alice)))

	s := newSession(t, identity.NewStatic(alice, ""), local)
	ok, err := s.Resume(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccountsChangedSameAccountKeepsSession(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, identity.NewStatic(alice, ""), openDB(t))
	_, err := s.Connect(ctx)
	require.NoError(t, err)

	s.AccountsChanged(ctx, []string{identity.Normalize(alice)})
	assert.True(t, s.Connected())

	s.AccountsChanged(ctx, nil)
	assert.False(t, s.Connected())
}

func TestPreferencesAndView(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, identity.NewStatic(alice, ""), openDB(t))

	assert.ErrorIs(t, s.SetSort(model.SortPriority), ErrNotConnected)

	_, err := s.Connect(ctx)
	require.NoError(t, err)
	store := s.Tasks()
	low, _ := store.Add("low", model.PriorityLow, nil, "Study")
	store.Add("high", model.PriorityHigh, nil, "Work")
	store.Toggle(low.ID)

	assert.Equal(t, []string{"high"}, texts(s.View()))

	require.NoError(t, s.SetFilter(model.FilterAll))
	require.NoError(t, s.SetSort(model.SortPriority))
	assert.Equal(t, []string{"high", "low"}, texts(s.View()))

	require.NoError(t, s.ToggleActiveTag("Study"))
	assert.Equal(t, []string{"low"}, texts(s.View()))
	require.NoError(t, s.ToggleActiveTag("Study"))
	assert.Nil(t, s.Preferences().ActiveTag)
}

func TestDisconnectPausesRunningFocusSession(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, identity.NewStatic(alice, ""), openDB(t), WithFocusOptions(focus.WithInterval(time.Hour)))

	_, err := s.Connect(ctx)
	require.NoError(t, err)
	task, _ := s.Tasks().Add("deep work", model.PriorityMedium, nil, "")
	require.NoError(t, s.Focus().Open(task.ID))
	require.NoError(t, s.Focus().Start())

	s.Disconnect(ctx)
	assert.Nil(t, s.Focus())

	_, err = s.Connect(ctx)
	require.NoError(t, err)
	got, ok := s.Tasks().Get(task.ID)
	require.True(t, ok)
	require.NotNil(t, got.PomodoroPausedAt)
	assert.InDelta(t, 1500, *got.PomodoroPausedAt, 2)
}

func TestPushAndPull(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	s := newSession(t, identity.NewStatic(alice, ""), openDB(t), WithRemote(remote))

	assert.ErrorIs(t, s.Push(ctx), ErrNotConnected)

	_, err := s.Connect(ctx)
	require.NoError(t, err)
	s.Tasks().Add("one", model.PriorityLow, nil, "")
	s.Tasks().Add("two", model.PriorityLow, nil, "")
	require.NoError(t, s.SetSort(model.SortDueDate))

	require.NoError(t, s.Push(ctx))
	assert.Equal(t, []string{"two", "one"}, texts(remote.snapshot(alice)))

	// Another device rewrote the remote snapshot
	require.NoError(t, remote.ReplaceTasks(ctx, alice, []model.Task{{ID: 99, Text: "from elsewhere", Priority: model.PriorityHigh, Tags: []string{}}}))

	require.NoError(t, s.Pull(ctx))
	assert.Equal(t, []string{"from elsewhere"}, texts(s.Tasks().Tasks()))
	assert.Equal(t, model.SortDueDate, s.Preferences().Sort)

	// Pulled state is persisted locally
	s.Disconnect(ctx)
	_, err = s.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"from elsewhere"}, texts(s.Tasks().Tasks()))
}

func TestPullFailureKeepsLocalState(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.err = errors.New("connection refused")
	s := newSession(t, identity.NewStatic(alice, ""), openDB(t), WithRemote(remote))

	_, err := s.Connect(ctx)
	require.NoError(t, err)
	s.Tasks().Add("local only", model.PriorityLow, nil, "")

	assert.Error(t, s.Pull(ctx))
	assert.Equal(t, []string{"local only"}, texts(s.Tasks().Tasks()))
}

func TestPushAsyncNeverBlocksOnFailure(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.err = errors.New("server down")
	s := New(identity.NewStatic(alice, ""), openDB(t), WithRemote(remote), WithAutoPush(true))

	_, err := s.Connect(ctx)
	require.NoError(t, err)
	s.Tasks().Add("a", model.PriorityLow, nil, "")

	s.PushAsync()
	s.PushAsync()
	s.Close()

	assert.Equal(t, 1, s.Tasks().Len())
}

func TestPushAsyncNeedsAutoPush(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()

	manual := New(identity.NewStatic(alice, ""), openDB(t), WithRemote(remote))
	_, err := manual.Connect(ctx)
	require.NoError(t, err)
	manual.Tasks().Add("stays local", model.PriorityLow, nil, "")
	manual.PushAsync()
	manual.Close()

	got, err := remote.FetchTasks(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, got)

	auto := New(identity.NewStatic(alice, ""), openDB(t), WithRemote(remote), WithAutoPush(true))
	_, err = auto.Connect(ctx)
	require.NoError(t, err)
	auto.Tasks().Add("goes up", model.PriorityLow, nil, "")
	auto.PushAsync()
	auto.Close()

	got, err = remote.FetchTasks(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"goes up"}, texts(got))
}

func TestPushWithoutRemote(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, identity.NewStatic(alice, ""), openDB(t))
	_, err := s.Connect(ctx)
	require.NoError(t, err)

	assert.Error(t, s.Push(ctx))
	assert.Error(t, s.Pull(ctx))
	s.PushAsync()
}
