package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/watchtower/internal/engine"
	"github.com/roach88/watchtower/internal/model"
	"github.com/roach88/watchtower/internal/store"
	"github.com/roach88/watchtower/internal/store/pgstore"
)

// Backend is a snapshot store with history, as both store implementations
// provide.
type Backend interface {
	engine.SnapshotStore
	History(ctx context.Context, afterSeq int64, limit int) ([]model.HistoryEntry, error)
	LastSeq(ctx context.Context) (int64, error)
	Close() error
}

var (
	_ Backend = (*store.Store)(nil)
	_ Backend = (*pgstore.Store)(nil)
)

// isPostgres reports whether dsn names a Postgres database.
func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// openBackend opens the store named by dsn: Postgres for postgres:// URLs,
// otherwise a SQLite file path.
func openBackend(ctx context.Context, dsn string) (Backend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("no database configured (set --db or %s)", EnvDatabase)
	}
	if isPostgres(dsn) {
		pg, err := pgstore.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// LoadActor reads an actor profile YAML file.
// Unknown fields are rejected.
func LoadActor(path string) (model.Actor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Actor{}, fmt.Errorf("failed to read actor profile: %w", err)
	}

	var actor model.Actor
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&actor); err != nil {
		return model.Actor{}, fmt.Errorf("failed to parse actor profile: %w", err)
	}
	if actor.ID == "" {
		return model.Actor{}, fmt.Errorf("actor profile: id is required")
	}
	if !actor.Role.Valid() {
		return model.Actor{}, fmt.Errorf("actor profile: unknown role %q", actor.Role)
	}
	return actor, nil
}

// actorSource returns the source for an optional profile path.
// An empty path means nobody is logged in.
func actorSource(path string) (*engine.StaticActor, error) {
	if path == "" {
		return &engine.StaticActor{}, nil
	}
	actor, err := LoadActor(path)
	if err != nil {
		return nil, err
	}
	return engine.NewStaticActor(actor), nil
}
