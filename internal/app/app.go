package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/dori/sweet/internal/config"
	"github.com/dori/sweet/internal/db"
	"github.com/dori/sweet/internal/focus"
	"github.com/dori/sweet/internal/identity"
	"github.com/dori/sweet/internal/logging"
	"github.com/dori/sweet/internal/notify"
	"github.com/dori/sweet/internal/remote"
	"github.com/dori/sweet/internal/session"
)

// App holds the client state and dependencies
type App struct {
	Config   *config.Config
	DB       *db.DB
	Notifier *notify.Notifier
	Wallet   *identity.Static
	Remote   *remote.Client
	Session  *session.Session
	Logger   *zap.Logger
	// FocusUpdates carries focus timer recomputations to the UI. Sends never
	// block, so a slow reader only misses intermediate values.
	FocusUpdates <-chan focus.Status
	DataDir  string
	lockFile *flock.Flock
}

// Options tweak how the client is assembled
type Options struct {
	Verbose bool
	// Logger replaces the file logger, mostly for tests
	Logger *zap.Logger
}

// New creates a new client instance
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config:   cfg,
		DataDir:  cfg.DataDir,
		Notifier: notify.NewNotifier(),
		Logger:   opts.Logger,
	}
	app.Notifier.SetEnabled(cfg.Notifications)

	if app.Logger == nil {
		logger, err := logging.New(logging.Options{
			Debug: opts.Verbose || cfg.Debug,
			File:  cfg.LogPath(),
		})
		if err != nil {
			return nil, err
		}
		app.Logger = logger
	}

	// Acquire lock to ensure single instance
	if err := app.acquireLock(); err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DBPath())
	if err != nil {
		app.releaseLock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database
	app.Logger.Debug("local database opened", zap.String("path", database.Path()))

	updates := make(chan focus.Status, 1)
	app.FocusUpdates = updates

	app.Wallet = identity.NewStatic(cfg.Address, cfg.DisplayName)
	app.Remote = remote.New(cfg.ServerURL, nil)
	app.Session = session.New(app.Wallet, app.DB,
		session.WithRemote(app.Remote),
		session.WithAutoPush(cfg.AutoPush),
		session.WithNotifier(app.Notifier),
		session.WithLogger(app.Logger),
		session.WithFocusOptions(
			focus.WithDuration(cfg.FocusDuration()),
			focus.WithOnUpdate(func(st focus.Status) {
				select {
				case updates <- st:
				default:
				}
			}),
		),
	)

	return app, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.DataDir, "sweet.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of sweet is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.Session != nil {
		a.Session.Close()
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if a.Logger != nil {
		_ = a.Logger.Sync()
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
