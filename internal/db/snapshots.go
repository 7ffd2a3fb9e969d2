package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dori/sweet/internal/model"
)

// Storage keys. Task and preference snapshots are namespaced per address so
// two wallets on the same machine never see each other's data.
const (
	tasksKeyPrefix = "sweet_tasks_"
	prefsKeyPrefix = "sweet_prefs_"
	lastAddressKey = "sweet_connected_user_address"
)

// TasksKey returns the storage key of an address's task snapshot
func TasksKey(address string) string {
	return tasksKeyPrefix + strings.ToLower(address)
}

// PrefsKey returns the storage key of an address's preferences snapshot
func PrefsKey(address string) string {
	return prefsKeyPrefix + strings.ToLower(address)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// Get returns the raw value stored under key
func (db *DB) Get(key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value
func (db *DB) Put(key, value string) error {
	return put(db, key, value)
}

func put(e execer, key, value string) error {
	_, err := e.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now())
	return err
}

// Delete removes key
func (db *DB) Delete(key string) error {
	_, err := db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

// LoadTasks returns the task snapshot of address.
// A missing or unreadable snapshot yields an empty collection.
func (db *DB) LoadTasks(address string) ([]model.Task, error) {
	raw, ok, err := db.Get(TasksKey(address))
	if err != nil {
		return []model.Task{}, err
	}
	if !ok {
		return []model.Task{}, nil
	}

	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return []model.Task{}, fmt.Errorf("failed to decode tasks snapshot: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// SaveTasks replaces the task snapshot of address
func (db *DB) SaveTasks(address string, tasks []model.Task) error {
	raw, err := encodeTasks(tasks)
	if err != nil {
		return err
	}
	return db.Put(TasksKey(address), raw)
}

// LoadPreferences returns the preferences of address, or the defaults when none are stored
func (db *DB) LoadPreferences(address string) (model.Preferences, error) {
	raw, ok, err := db.Get(PrefsKey(address))
	if err != nil {
		return model.DefaultPreferences(), err
	}
	if !ok {
		return model.DefaultPreferences(), nil
	}

	var prefs model.Preferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return model.DefaultPreferences(), fmt.Errorf("failed to decode preferences snapshot: %w", err)
	}
	return prefs.Normalize(), nil
}

// SavePreferences replaces the preferences of address
func (db *DB) SavePreferences(address string, prefs model.Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	return db.Put(PrefsKey(address), string(raw))
}

// SaveSnapshot writes tasks and preferences of address in one transaction
func (db *DB) SaveSnapshot(address string, tasks []model.Task, prefs model.Preferences) error {
	rawTasks, err := encodeTasks(tasks)
	if err != nil {
		return err
	}
	rawPrefs, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	return db.Transaction(func(tx *sql.Tx) error {
		if err := put(tx, TasksKey(address), rawTasks); err != nil {
			return err
		}
		return put(tx, PrefsKey(address), string(rawPrefs))
	})
}

// LastAddress returns the address of the last connected wallet, if any
func (db *DB) LastAddress() (string, error) {
	addr, _, err := db.Get(lastAddressKey)
	return addr, err
}

// SetLastAddress records the connected wallet for session resumption
func (db *DB) SetLastAddress(address string) error {
	return db.Put(lastAddressKey, address)
}

// ClearLastAddress forgets the connected wallet. Per-address snapshots are kept.
func (db *DB) ClearLastAddress() error {
	return db.Delete(lastAddressKey)
}

func encodeTasks(tasks []model.Task) (string, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("failed to encode tasks: %w", err)
	}
	return string(raw), nil
}
