// Package pgstore is the Postgres-backed remote store behind the sync server.
package pgstore

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/dori/sweet/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements the server's persistence on a pgx pool
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Open connects to dsn, checks the connection and applies migrations
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{pool: pool, logger: logger}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies the embedded migrations
func (s *Store) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.Duration("took", r.Duration))
	}
	return nil
}

// Close releases the pool
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func ensureUser(ctx context.Context, tx pgx.Tx, address string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO users (address) VALUES ($1) ON CONFLICT (address) DO NOTHING`,
		address)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

const taskColumns = `id, text, completed, priority, due_date, tags, pomodoros, completed_at, pomodoro_paused_at`

// FetchTasks returns the snapshot of address, newest first
func (s *Store) FetchTasks(ctx context.Context, address string) ([]model.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_address = $1 ORDER BY created_at DESC, id DESC`,
		address)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	tasks, err := pgx.CollectRows(rows, scanTask)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(row pgx.CollectableRow) (model.Task, error) {
	var (
		t         model.Task
		priority  string
		due       *time.Time
		completed *time.Time
		paused    *int32
	)
	if err := row.Scan(&t.ID, &t.Text, &t.Completed, &priority, &due, &t.Tags, &t.Pomodoros, &completed, &paused); err != nil {
		return model.Task{}, err
	}

	t.Priority = model.Priority(priority)
	if due != nil {
		d := model.DateOf(due.UTC())
		t.DueDate = &d
	}
	if completed != nil {
		ts := completed.UTC()
		t.CompletedAt = &ts
	}
	if paused != nil {
		secs := int(*paused)
		t.PomodoroPausedAt = &secs
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

// ReplaceTasks swaps the whole snapshot of address in one transaction, so a
// failed insert leaves the previous rows in place.
func (s *Store) ReplaceTasks(ctx context.Context, address string, tasks []model.Task) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := ensureUser(ctx, tx, address); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE user_address = $1`, address); err != nil {
			return fmt.Errorf("failed to delete tasks: %w", err)
		}
		if len(tasks) == 0 {
			return nil
		}

		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"tasks"},
			[]string{"id", "user_address", "text", "completed", "priority", "due_date", "tags", "pomodoros", "completed_at", "pomodoro_paused_at", "created_at"},
			pgx.CopyFromSlice(len(tasks), func(i int) ([]any, error) {
				t := tasks[i]
				var due *time.Time
				if t.DueDate != nil {
					d := t.DueDate.Time()
					due = &d
				}
				var paused *int32
				if t.PomodoroPausedAt != nil {
					p := int32(*t.PomodoroPausedAt)
					paused = &p
				}
				tags := t.Tags
				if tags == nil {
					tags = []string{}
				}
				return []any{t.ID, address, t.Text, t.Completed, string(t.Priority), due, tags, int32(t.Pomodoros), t.CompletedAt, paused, t.CreatedAt()}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to insert tasks: %w", err)
		}
		return nil
	})
}

// GetPreferences returns the stored preferences of address, or nil
func (s *Store) GetPreferences(ctx context.Context, address string) (*model.Preferences, error) {
	var (
		p         model.Preferences
		filter    string
		sort      string
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT filter, sort, active_tag, updated_at FROM user_preferences WHERE user_address = $1`,
		address).Scan(&filter, &sort, &p.ActiveTag, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}

	p.Filter = model.Filter(filter)
	p.Sort = model.Sort(sort)
	updatedAt = updatedAt.UTC()
	p.UpdatedAt = &updatedAt
	return &p, nil
}

// PutPreferences ensures the user row, then upserts the preferences
func (s *Store) PutPreferences(ctx context.Context, address string, prefs model.Preferences) error {
	prefs = prefs.Normalize()
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := ensureUser(ctx, tx, address); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO user_preferences (user_address, filter, sort, active_tag, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (user_address) DO UPDATE SET
				filter = EXCLUDED.filter,
				sort = EXCLUDED.sort,
				active_tag = EXCLUDED.active_tag,
				updated_at = EXCLUDED.updated_at`,
			address, string(prefs.Filter), string(prefs.Sort), prefs.ActiveTag)
		if err != nil {
			return fmt.Errorf("failed to upsert preferences: %w", err)
		}
		return nil
	})
}

// UpsertProfile creates or refreshes a platform profile keyed by fid
func (s *Store) UpsertProfile(ctx context.Context, p model.Profile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_profiles (fid, username, display_name, pfp_url, bio, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (fid) DO UPDATE SET
			username = EXCLUDED.username,
			display_name = EXCLUDED.display_name,
			pfp_url = EXCLUDED.pfp_url,
			bio = EXCLUDED.bio,
			updated_at = EXCLUDED.updated_at`,
		p.FID, p.Username, p.DisplayName, p.PfpURL, p.Bio)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// GetProfile returns the profile for fid, or nil
func (s *Store) GetProfile(ctx context.Context, fid int64) (*model.Profile, error) {
	var p model.Profile
	err := s.pool.QueryRow(ctx,
		`SELECT fid, username, display_name, pfp_url, bio, updated_at FROM user_profiles WHERE fid = $1`,
		fid).Scan(&p.FID, &p.Username, &p.DisplayName, &p.PfpURL, &p.Bio, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return &p, nil
}

// InsertNotification stores a notification row, assigning its id
func (s *Store) InsertNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	var data any
	if len(n.Data) > 0 {
		data = []byte(n.Data)
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Message, data).Scan(&n.CreatedAt)
	if err != nil {
		return model.Notification{}, fmt.Errorf("failed to insert notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns the newest notifications of a platform user
func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, user_id, type, title, message, data, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Notification, error) {
		var (
			n    model.Notification
			kind string
			data []byte
		)
		if err := row.Scan(&n.ID, &n.UserID, &kind, &n.Title, &n.Message, &data, &n.CreatedAt); err != nil {
			return model.Notification{}, err
		}
		n.Type = model.NotificationType(kind)
		if len(data) > 0 {
			n.Data = json.RawMessage(data)
		}
		return n, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan notifications: %w", err)
	}
	return out, nil
}
