// Package config resolves runtime settings: defaults, then a TOML or JSONC
// file, then TODO_* environment variables. Command-line flags are applied by
// the caller on top of the result.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
)

// Storage backends.
const (
	BackendJSON      = "json"
	BackendBolt      = "bolt"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// ErrUnknownBackend is returned for a store value that names no backend.
var ErrUnknownBackend = errors.New("unknown store backend")

// Config holds the settings shared by every front end.
type Config struct {
	Store               string
	DataDir             string
	AutosaveInterval    time.Duration
	SearchDebounce      time.Duration
	Theme               string
	Listen              string
	FirestoreProject    string
	FirestoreCollection string
}

const (
	defaultConfigPath       = "~/.config/todo/config.toml"
	defaultDataDir          = "~/.local/share/todo"
	defaultAutosaveInterval = 30 * time.Second
	defaultSearchDebounce   = 500 * time.Millisecond
	defaultTheme            = "light"
	defaultListen           = "127.0.0.1:8080"
	defaultCollection       = "todo_kv"
)

// Default returns the built-in settings with DataDir expanded.
func Default() Config {
	return Config{
		Store:               BackendJSON,
		DataDir:             mustExpand(defaultDataDir),
		AutosaveInterval:    defaultAutosaveInterval,
		SearchDebounce:      defaultSearchDebounce,
		Theme:               defaultTheme,
		Listen:              defaultListen,
		FirestoreCollection: defaultCollection,
	}
}

// fileConfig is the on-disk shape shared by TOML and JSONC files.
type fileConfig struct {
	Store               string `toml:"store" json:"store"`
	DataDir             string `toml:"data_dir" json:"data_dir"`
	AutosaveInterval    string `toml:"autosave_interval" json:"autosave_interval"`
	SearchDebounce      string `toml:"search_debounce" json:"search_debounce"`
	Theme               string `toml:"theme" json:"theme"`
	Listen              string `toml:"listen" json:"listen"`
	FirestoreProject    string `toml:"firestore_project" json:"firestore_project"`
	FirestoreCollection string `toml:"firestore_collection" json:"firestore_collection"`
}

// LoadDotEnv loads KEY=VALUE pairs from path (".env" when empty) into the
// process environment without overriding variables that are already set. A
// missing file is not an error.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the config file at path (the default location when empty),
// falling back to defaults when it is missing, then applies environment
// overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		raw, err := parse(resolved, data)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if err := cfg.merge(raw); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.merge(fromEnv()); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields Load cannot fix up on its own.
func (c Config) Validate() error {
	switch c.Store {
	case BackendJSON, BackendBolt, BackendFirestore, BackendMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Store)
	}
	if c.Store == BackendFirestore && c.FirestoreProject == "" {
		return errors.New("firestore store needs firestore_project or GOOGLE_CLOUD_PROJECT")
	}
	if c.AutosaveInterval <= 0 {
		return fmt.Errorf("autosave_interval must be positive, got %s", c.AutosaveInterval)
	}
	return nil
}

// ExpandDataDir expands a user-supplied data directory the same way Load
// does.
func ExpandDataDir(dir string) (string, error) {
	return expandPath(dir)
}

func parse(path string, data []byte) (fileConfig, error) {
	var raw fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return raw, fmt.Errorf("invalid JSONC: %w", err)
		}
		if err := json.Unmarshal(standardized, &raw); err != nil {
			return raw, fmt.Errorf("invalid JSON: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return raw, err
		}
	}
	return raw, nil
}

func fromEnv() fileConfig {
	project := os.Getenv("TODO_FIRESTORE_PROJECT")
	if project == "" {
		project = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	return fileConfig{
		Store:               os.Getenv("TODO_STORE"),
		DataDir:             os.Getenv("TODO_DATA_DIR"),
		AutosaveInterval:    os.Getenv("TODO_AUTOSAVE_INTERVAL"),
		SearchDebounce:      os.Getenv("TODO_SEARCH_DEBOUNCE"),
		Theme:               os.Getenv("TODO_THEME"),
		Listen:              os.Getenv("TODO_LISTEN"),
		FirestoreProject:    project,
		FirestoreCollection: os.Getenv("TODO_FIRESTORE_COLLECTION"),
	}
}

// merge overlays the non-blank fields of raw.
func (c *Config) merge(raw fileConfig) error {
	if v := strings.TrimSpace(raw.Store); v != "" {
		c.Store = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		c.DataDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.AutosaveInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("autosave_interval: %w", err)
		}
		c.AutosaveInterval = d
	}
	if v := strings.TrimSpace(raw.SearchDebounce); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("search_debounce: %w", err)
		}
		c.SearchDebounce = d
	}
	if v := strings.TrimSpace(raw.Theme); v != "" {
		c.Theme = v
	}
	if v := strings.TrimSpace(raw.Listen); v != "" {
		c.Listen = v
	}
	if v := strings.TrimSpace(raw.FirestoreProject); v != "" {
		c.FirestoreProject = v
	}
	if v := strings.TrimSpace(raw.FirestoreCollection); v != "" {
		c.FirestoreCollection = v
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
