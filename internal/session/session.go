// Package session holds everything that belongs to the connected identity:
// the user, their task store, view preferences and focus timer. Switching
// identity tears all of it down before the next identity's snapshot loads.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dori/sweet/internal/focus"
	"github.com/dori/sweet/internal/identity"
	"github.com/dori/sweet/internal/model"
	"github.com/dori/sweet/internal/tasks"
)

// ErrNotConnected is returned by operations that need a user
var ErrNotConnected = errors.New("no wallet connected")

// pushTimeout bounds a background push
const pushTimeout = 30 * time.Second

// LocalStore is the per-identity local persistence
type LocalStore interface {
	tasks.Persister
	LoadTasks(address string) ([]model.Task, error)
	LoadPreferences(address string) (model.Preferences, error)
	SavePreferences(address string, prefs model.Preferences) error
	SaveSnapshot(address string, tasks []model.Task, prefs model.Preferences) error
	LastAddress() (string, error)
	SetLastAddress(address string) error
	ClearLastAddress() error
}

// Remote is the sync gateway
type Remote interface {
	Configured() bool
	FetchTasks(ctx context.Context, address string) ([]model.Task, error)
	ReplaceTasks(ctx context.Context, address string, tasks []model.Task) error
	GetPreferences(ctx context.Context, address string) (*model.Preferences, error)
	PutPreferences(ctx context.Context, address string, prefs model.Preferences) error
}

// Session is the explicit context of one running client
type Session struct {
	mu       sync.Mutex
	provider identity.Provider
	local    LocalStore
	remote   Remote
	notifier focus.Notifier
	focusOps []focus.Option
	logger   *zap.Logger
	now      func() time.Time
	autoPush bool

	user   *model.User
	store  *tasks.Store
	prefs  model.Preferences
	engine *focus.Engine

	pushMu sync.Mutex // serializes pushes so the newest snapshot lands last
	wg     sync.WaitGroup
}

// Option configures a Session
type Option func(*Session)

// WithRemote enables sync through r
func WithRemote(r Remote) Option {
	return func(s *Session) { s.remote = r }
}

// WithAutoPush lets PushAsync send snapshots after local changes
func WithAutoPush(on bool) Option {
	return func(s *Session) { s.autoPush = on }
}

// WithNotifier sets who hears about finished focus sessions
func WithNotifier(n focus.Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithFocusOptions passes options to every focus engine the session creates
func WithFocusOptions(opts ...focus.Option) Option {
	return func(s *Session) { s.focusOps = append(s.focusOps, opts...) }
}

// WithLogger sets the session logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock overrides the clock used for new task stores
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a disconnected session
func New(provider identity.Provider, local LocalStore, opts ...Option) *Session {
	s := &Session{
		provider: provider,
		local:    local,
		logger:   zap.NewNop(),
		now:      time.Now,
		prefs:    model.DefaultPreferences(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// User returns the connected user
func (s *Session) User() (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Connected reports whether a user is connected
func (s *Session) Connected() bool {
	_, ok := s.User()
	return ok
}

// Tasks returns the task store of the connected user, or nil
func (s *Session) Tasks() *tasks.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// Focus returns the focus engine of the connected user, or nil
func (s *Session) Focus() *focus.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// Preferences returns the current view preferences
func (s *Session) Preferences() model.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Connect asks the wallet for an account and loads its snapshot
func (s *Session) Connect(ctx context.Context) (model.User, error) {
	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to connect wallet: %w", err)
	}
	if len(accounts) == 0 || strings.TrimSpace(accounts[0]) == "" {
		return model.User{}, fmt.Errorf("failed to connect wallet: %w", identity.ErrRejected)
	}

	user := s.activate(accounts[0])
	s.logger.Info("wallet connected", zap.String("address", user.Address))
	return user, nil
}

// Resume reconnects the last identity when the wallet still grants it.
// Anything else ends in a disconnected session.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	last, err := s.local.LastAddress()
	if err != nil {
		s.logger.Debug("last address not readable", zap.Error(err))
	}
	if last == "" {
		return false, nil
	}

	accounts, err := s.provider.Accounts(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read wallet accounts: %w", err)
	}
	if len(accounts) > 0 && identity.Same(accounts[0], last) {
		s.activate(accounts[0])
		return true, nil
	}

	s.Disconnect(ctx)
	return false, nil
}

// AccountsChanged reacts to the wallet switching or dropping accounts
func (s *Session) AccountsChanged(ctx context.Context, accounts []string) {
	user, ok := s.User()
	if !ok {
		return
	}
	if len(accounts) == 0 || !identity.Same(accounts[0], user.Address) {
		s.logger.Info("wallet account changed", zap.String("from", user.Address))
		s.Disconnect(ctx)
	}
}

// Disconnect revokes the wallet grant and clears in-memory state.
// Persisted per-address data stays so a later connect restores it.
func (s *Session) Disconnect(ctx context.Context) {
	if err := s.provider.Revoke(ctx); err != nil {
		s.logger.Debug("revoke failed", zap.Error(err))
	}
	if err := s.local.ClearLastAddress(); err != nil {
		s.logger.Debug("last address not cleared", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

func (s *Session) activate(address string) model.User {
	name := ""
	if n, ok := s.provider.(identity.Namer); ok {
		name = n.DisplayName()
	}
	user := model.NewUser(address, name)

	if err := s.local.SetLastAddress(address); err != nil {
		s.logger.Debug("last address not saved", zap.Error(err))
	}

	loaded, err := s.local.LoadTasks(address)
	if err != nil {
		s.logger.Debug("task snapshot unreadable, starting empty", zap.Error(err))
	}
	prefs, err := s.local.LoadPreferences(address)
	if err != nil {
		s.logger.Debug("preferences unreadable, using defaults", zap.Error(err))
		prefs = model.DefaultPreferences()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Nothing of the previous identity may survive into this one
	s.teardownLocked()

	store := tasks.NewStore(address, s.local, tasks.WithLogger(s.logger), tasks.WithClock(s.now))
	store.Load(loaded)

	opts := []focus.Option{focus.WithLogger(s.logger)}
	if s.notifier != nil {
		opts = append(opts, focus.WithNotifier(s.notifier))
	}
	opts = append(opts, s.focusOps...)

	s.user = &user
	s.store = store
	s.prefs = prefs.Normalize()
	s.engine = focus.New(store, opts...)
	return user
}

func (s *Session) teardownLocked() {
	if s.engine != nil {
		s.engine.Shutdown()
	}
	s.user = nil
	s.store = nil
	s.engine = nil
	s.prefs = model.DefaultPreferences()
}

// View returns the tasks to display under the current preferences
func (s *Session) View() []model.Task {
	s.mu.Lock()
	store, prefs := s.store, s.prefs
	s.mu.Unlock()

	if store == nil {
		return []model.Task{}
	}
	return tasks.Project(store.Tasks(), prefs)
}

// SetFilter changes and persists the filter
func (s *Session) SetFilter(f model.Filter) error {
	return s.updatePrefs(func(p *model.Preferences) { p.Filter = f })
}

// SetSort changes and persists the sort order
func (s *Session) SetSort(o model.Sort) error {
	return s.updatePrefs(func(p *model.Preferences) { p.Sort = o })
}

// SetActiveTag narrows the view to tag; "" clears it
func (s *Session) SetActiveTag(tag string) error {
	return s.updatePrefs(func(p *model.Preferences) {
		if tag == "" {
			p.ActiveTag = nil
			return
		}
		p.ActiveTag = &tag
	})
}

// ToggleActiveTag selects tag, or clears it when it is already selected
func (s *Session) ToggleActiveTag(tag string) error {
	return s.updatePrefs(func(p *model.Preferences) {
		if p.Tag() == tag || tag == "" {
			p.ActiveTag = nil
			return
		}
		p.ActiveTag = &tag
	})
}

func (s *Session) updatePrefs(fn func(*model.Preferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return ErrNotConnected
	}
	fn(&s.prefs)
	s.prefs = s.prefs.Normalize()

	if err := s.local.SavePreferences(s.user.Address, s.prefs); err != nil {
		s.logger.Debug("preferences not saved", zap.Error(err))
	}
	return nil
}

// Push overwrites the remote snapshot with the local one
func (s *Session) Push(ctx context.Context) error {
	s.mu.Lock()
	user, store, prefs := s.user, s.store, s.prefs
	s.mu.Unlock()

	if user == nil {
		return ErrNotConnected
	}
	if s.remote == nil || !s.remote.Configured() {
		return fmt.Errorf("failed to push: sync server not configured")
	}

	s.pushMu.Lock()
	defer s.pushMu.Unlock()

	snapshot := store.Tasks()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.remote.ReplaceTasks(ctx, user.Address, snapshot)
	})
	g.Go(func() error {
		return s.remote.PutPreferences(ctx, user.Address, prefs)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}

	s.logger.Info("pushed snapshot", zap.String("address", user.Address), zap.Int("tasks", len(snapshot)))
	return nil
}

// PushAsync pushes in the background. Failures are logged and never
// reach the caller. It is a no-op unless auto push is on and a remote is
// configured.
func (s *Session) PushAsync() {
	if !s.autoPush || s.remote == nil || !s.remote.Configured() || !s.Connected() {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := s.Push(ctx); err != nil {
			s.logger.Warn("background push failed", zap.Error(err))
		}
	}()
}

// Pull replaces the local snapshot with the remote one. Remote
// preferences win when present.
func (s *Session) Pull(ctx context.Context) error {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()

	if user == nil {
		return ErrNotConnected
	}
	if s.remote == nil || !s.remote.Configured() {
		return fmt.Errorf("failed to pull: sync server not configured")
	}

	var (
		remoteTasks []model.Task
		remotePrefs *model.Preferences
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		remoteTasks, err = s.remote.FetchTasks(gctx, user.Address)
		return err
	})
	g.Go(func() error {
		var err error
		remotePrefs, err = s.remote.GetPreferences(gctx, user.Address)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to pull: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The identity may have changed while the requests were in flight
	if s.user == nil || !identity.Same(s.user.Address, user.Address) {
		return ErrNotConnected
	}

	s.store.Load(remoteTasks)
	if remotePrefs != nil {
		s.prefs = remotePrefs.Normalize()
		s.prefs.UpdatedAt = nil
	}
	if err := s.local.SaveSnapshot(user.Address, s.store.Tasks(), s.prefs); err != nil {
		s.logger.Debug("pulled snapshot not saved", zap.Error(err))
	}

	s.logger.Info("pulled snapshot", zap.String("address", user.Address), zap.Int("tasks", len(remoteTasks)))
	return nil
}

// Close waits for background pushes and stops the focus timer. The
// identity stays connected for the next run.
func (s *Session) Close() {
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		s.engine.Shutdown()
	}
}
