package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TODO_STORE", "TODO_DATA_DIR", "TODO_AUTOSAVE_INTERVAL", "TODO_SEARCH_DEBOUNCE",
		"TODO_THEME", "TODO_LISTEN", "TODO_FIRESTORE_PROJECT", "TODO_FIRESTORE_COLLECTION",
		"GOOGLE_CLOUD_PROJECT",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store != BackendJSON {
		t.Fatalf("Store = %q, want %q", cfg.Store, BackendJSON)
	}
	if cfg.DataDir != filepath.Join(home, ".local/share/todo") {
		t.Fatalf("DataDir = %q, want it under HOME", cfg.DataDir)
	}
	if cfg.AutosaveInterval != 30*time.Second {
		t.Fatalf("AutosaveInterval = %v, want 30s", cfg.AutosaveInterval)
	}
	if cfg.SearchDebounce != 500*time.Millisecond {
		t.Fatalf("SearchDebounce = %v, want 500ms", cfg.SearchDebounce)
	}
}

func TestLoad_ParsesTOML(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeFile(t, "config.toml", `
store = "  bolt "
data_dir = "~/todo-data"
autosave_interval = "10s"
theme = "dark"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store != BackendBolt {
		t.Fatalf("Store = %q, want bolt", cfg.Store)
	}
	if cfg.DataDir != filepath.Join(home, "todo-data") {
		t.Fatalf("DataDir = %q", cfg.DataDir)
	}
	if cfg.AutosaveInterval != 10*time.Second {
		t.Fatalf("AutosaveInterval = %v, want 10s", cfg.AutosaveInterval)
	}
	if cfg.Theme != "dark" {
		t.Fatalf("Theme = %q, want dark", cfg.Theme)
	}
}

func TestLoad_ParsesJSONCWithComments(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.jsonc", `{
  // memory store for throwaway sessions
  "store": "memory",
  "listen": "0.0.0.0:9000", // trailing comma next
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store != BackendMemory || cfg.Listen != "0.0.0.0:9000" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `store = "bolt"`)
	t.Setenv("TODO_STORE", "memory")
	t.Setenv("TODO_AUTOSAVE_INTERVAL", "1m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store != BackendMemory {
		t.Fatalf("Store = %q, want memory", cfg.Store)
	}
	if cfg.AutosaveInterval != time.Minute {
		t.Fatalf("AutosaveInterval = %v, want 1m", cfg.AutosaveInterval)
	}
}

func TestLoad_FirestoreUsesGoogleCloudProject(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODO_STORE", "firestore")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "demo-project")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FirestoreProject != "demo-project" || cfg.FirestoreCollection != "todo_kv" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"invalid toml", "config.toml", `store = [`, "parse config"},
		{"invalid jsonc", "config.json", `{"store": }`, "parse config"},
		{"bad duration", "config.toml", `autosave_interval = "soon"`, "autosave_interval"},
		{"unknown backend", "config.toml", `store = "sqlite"`, "unknown store backend"},
		{"firestore without project", "config.toml", `store = "firestore"`, "firestore_project"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeFile(t, tt.file, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_UnknownBackendIsSentinel(t *testing.T) {
	cfg := Default()
	cfg.Store = "redis"
	if err := cfg.Validate(); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("Validate = %v, want ErrUnknownBackend", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv(missing) = %v, want nil", err)
	}

	path := writeFile(t, ".env", "TODO_THEME=mono\nTODO_LISTEN=127.0.0.1:1\n")
	t.Setenv("TODO_LISTEN", "127.0.0.1:2")
	// godotenv does not override a variable that is already set; unset the
	// one we expect it to fill.
	os.Unsetenv("TODO_THEME")
	t.Cleanup(func() { os.Unsetenv("TODO_THEME") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("TODO_THEME"); got != "mono" {
		t.Fatalf("TODO_THEME = %q, want mono", got)
	}
	if got := os.Getenv("TODO_LISTEN"); got != "127.0.0.1:2" {
		t.Fatalf("TODO_LISTEN = %q, want existing value kept", got)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if want := filepath.Join(home, "a/b"); got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath(blank) returned nil error")
	}
}
