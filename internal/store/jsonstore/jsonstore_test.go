package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idilsaglam/todoreducer/internal/store/storetest"
)

func TestStore(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "todos.json"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	storetest.TestKV(t, s)
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nope", "todos.json"), nil)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if _, ok, _ := s.Get("todos"); ok {
		t.Fatalf("Get(todos) present in a fresh store")
	}
}

func TestSet_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "todos.json")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Set("nextId", "5"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var onDisk map[string]string
	if err := json.Unmarshal(b, &onDisk); err != nil {
		t.Fatalf("file is not a JSON object: %v", err)
	}
	if onDisk["nextId"] != "5" {
		t.Fatalf("on-disk nextId = %q, want 5", onDisk["nextId"])
	}

	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, _, _ := reopened.Get("nextId"); v != "5" {
		t.Fatalf("reopened nextId = %q, want 5", v)
	}
}

func TestOpen_CorruptFileMovedAside(t *testing.T) {
	dir := t.TempDir()
	path := DefaultPath(dir)
	corrupt := `{"todos": "[{\"id\":1`
	if err := os.WriteFile(path, []byte(corrupt), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var logs bytes.Buffer
	s, err := Open(path, log.New(&logs, "", 0))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if _, ok, _ := s.Get("todos"); ok {
		t.Fatalf("Get(todos) present after a corrupt file")
	}
	if !strings.Contains(logs.String(), "json unmarshal") {
		t.Fatalf("log = %q, want json unmarshal error", logs.String())
	}

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("corrupt file still at %s (err %v)", path, err)
	}
	matches, err := filepath.Glob(path + ".corrupt-*")
	if err != nil || len(matches) != 1 {
		t.Fatalf("corrupt copies = %v (err %v), want exactly one", matches, err)
	}
	b, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(b) != corrupt {
		t.Fatalf("moved file = %q, want original bytes %q", b, corrupt)
	}

	// The store is usable and starts a fresh file.
	if err := s.Set("nextId", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Stat after Set: %v", err)
	}
}
