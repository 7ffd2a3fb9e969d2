// Package config loads sweet's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dori/sweet/internal/db"
)

// Config holds all sweet configuration
type Config struct {
	// Client
	DataDir       string `yaml:"data_dir"`
	Address       string `yaml:"address"`      // wallet address offered by the static provider
	DisplayName   string `yaml:"display_name"` // optional override for the shortened address
	ServerURL     string `yaml:"server_url"`
	FocusMinutes  int    `yaml:"focus_minutes"`
	Theme         string `yaml:"theme"`
	Notifications bool   `yaml:"notifications"`
	AutoPush      bool   `yaml:"auto_push"` // push after every change in the TUI

	// Server
	ListenAddr  string `yaml:"listen_addr"`
	DatabaseURL string `yaml:"database_url"`

	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		DataDir:       db.DefaultDataDir(),
		FocusMinutes:  25,
		Theme:         "candy",
		Notifications: true,
		ListenAddr:    ":8080",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/sweet/config.yaml
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".sweet", "config.yaml")
	}
	return filepath.Join(dir, "sweet", "config.yaml")
}

// Load reads path, falling back to defaults when it doesn't exist.
// Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later
func (c *Config) Validate() error {
	if c.FocusMinutes < 0 {
		return fmt.Errorf("focus_minutes must not be negative, got %d", c.FocusMinutes)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SWEET_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("SWEET_ADDRESS"); v != "" {
		c.Address = v
	}
	if v := os.Getenv("SWEET_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("SWEET_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("SWEET_DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("SWEET_AUTO_PUSH"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.AutoPush = b
		}
	}
	if v := os.Getenv("SWEET_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.Debug = b
		}
	}
}

// FocusDuration returns the length of a focus session
func (c *Config) FocusDuration() time.Duration {
	if c.FocusMinutes <= 0 {
		return 25 * time.Minute
	}
	return time.Duration(c.FocusMinutes) * time.Minute
}

// DBPath returns the local database file
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "sweet.db")
}

// LogPath returns the client log file
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "sweet.log")
}
