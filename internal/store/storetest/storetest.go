// Package storetest keeps a test suite that every store.KV backend runs.
package storetest

import (
	"testing"

	"github.com/idilsaglam/todoreducer/internal/store"
)

// TestKV exercises the store.KV contract against kv, which must start empty.
func TestKV(t *testing.T, kv store.KV) {
	t.Helper()

	if _, ok, err := kv.Get("todos"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v err %v, want absent", ok, err)
	}

	if err := kv.Set("todos", `[{"id":1}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set("nextId", "2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := kv.Get("todos")
	if err != nil || !ok || v != `[{"id":1}]` {
		t.Fatalf("Get(todos) = %q, %v, %v; want stored value", v, ok, err)
	}

	if err := kv.Set("nextId", "3"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if v, _, _ := kv.Get("nextId"); v != "3" {
		t.Fatalf("Get(nextId) after overwrite = %q, want 3", v)
	}

	if err := kv.Set("empty", ""); err != nil {
		t.Fatalf("Set empty: %v", err)
	}
	if v, ok, err := kv.Get("empty"); err != nil || !ok || v != "" {
		t.Fatalf("Get(empty) = %q, %v, %v; want present empty string", v, ok, err)
	}

	if err := kv.Remove("nextId"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := kv.Get("nextId"); ok {
		t.Fatalf("Get after Remove reports present")
	}
	if err := kv.Remove("never-set"); err != nil {
		t.Fatalf("Remove(missing) = %v, want nil", err)
	}

	if err := kv.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, k := range []string{"todos", "empty"} {
		if _, ok, _ := kv.Get(k); ok {
			t.Fatalf("Get(%q) after Clear reports present", k)
		}
	}
	if err := kv.Set("filter", "ALL"); err != nil {
		t.Fatalf("Set after Clear: %v", err)
	}
	if v, _, _ := kv.Get("filter"); v != "ALL" {
		t.Fatalf("Get(filter) after Clear+Set = %q, want ALL", v)
	}
}
