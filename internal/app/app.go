// Package app wires configuration, storage, and the synchronizer into a
// Session that the front ends share.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/idilsaglam/todoreducer/internal/config"
	"github.com/idilsaglam/todoreducer/internal/persist"
	"github.com/idilsaglam/todoreducer/internal/store"
	"github.com/idilsaglam/todoreducer/internal/store/boltstore"
	"github.com/idilsaglam/todoreducer/internal/store/firestore"
	"github.com/idilsaglam/todoreducer/internal/store/jsonstore"
	"github.com/idilsaglam/todoreducer/internal/store/memstore"
)

// OpenStore opens the backend named by cfg.Store.
func OpenStore(ctx context.Context, cfg config.Config, logger *log.Logger) (store.KV, error) {
	switch cfg.Store {
	case config.BackendMemory:
		return memstore.New(nil), nil
	case config.BackendFirestore:
		return firestore.Open(ctx, cfg.FirestoreProject, cfg.FirestoreCollection)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	switch cfg.Store {
	case config.BackendJSON:
		return jsonstore.Open(jsonstore.DefaultPath(cfg.DataDir), logger)
	case config.BackendBolt:
		return boltstore.Open(filepath.Join(cfg.DataDir, boltstore.FileName()))
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Store)
}

// Open builds a Session over the configured store. The session is not
// loaded yet; callers decide whether to Load synchronously (CLI, HTTP) or in
// the background (TUI).
func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (*Session, error) {
	kv, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	return NewSession(persist.New(kv, logger), logger, kv), nil
}
