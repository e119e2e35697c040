package memstore

import (
	"errors"
	"testing"

	"github.com/idilsaglam/todoreducer/internal/store"
	"github.com/idilsaglam/todoreducer/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.TestKV(t, New(nil))
}

func TestNew_CopiesInitial(t *testing.T) {
	initial := map[string]string{"filter": "ACTIVE"}
	s := New(initial)
	initial["filter"] = "ALL"

	if v, _, _ := s.Get("filter"); v != "ACTIVE" {
		t.Fatalf("Get(filter) = %q, want ACTIVE", v)
	}
}

func TestClosedStoreErrors(t *testing.T) {
	s := New(nil)
	_ = s.Close()
	if err := s.Set("k", "v"); !errors.Is(err, store.ErrClosed) {
		t.Fatalf("Set after Close = %v, want ErrClosed", err)
	}
	if _, _, err := s.Get("k"); !errors.Is(err, store.ErrClosed) {
		t.Fatalf("Get after Close = %v, want ErrClosed", err)
	}
}
