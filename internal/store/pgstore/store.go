// Package pgstore is a Postgres snapshot store for deployments where several
// watchtower processes share one database.
//
// It has the same shape as the SQLite store: the current value of each
// collection plus an append-only history ordered by seq.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roach88/watchtower/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Store is a Postgres snapshot store backed by a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an existing pool. The schema must already exist.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects to dsn and creates the schema if needed.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return NewStore(pool), nil
}

// Migrate applies the schema. It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Read returns the current value of c; false when c was never written.
func (s *Store) Read(ctx context.Context, c model.Collection) ([]byte, bool, error) {
	var data []byte
	row := s.pool.QueryRow(ctx, `
		SELECT data::text FROM collections WHERE name = $1
	`, string(c))
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", c, err)
	}
	return data, true, nil
}

// Replace sets the value of c and appends it to history.
func (s *Store) Replace(ctx context.Context, c model.Collection, data []byte) error {
	_, err := s.ReplaceSeq(ctx, c, data)
	return err
}

// ReplaceSeq sets the value of c and appends it to history in one
// transaction, returning the history seq.
func (s *Store) ReplaceSeq(ctx context.Context, c model.Collection, data []byte) (seq int64, err error) {
	fp, err := model.FingerprintJSON(data)
	if err != nil {
		return 0, fmt.Errorf("replace %s: %w", c, err)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("replace %s: begin: %w", c, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx, `
		INSERT INTO snapshot_history (collection, data, fingerprint)
		VALUES ($1, $2::jsonb, $3)
		RETURNING seq
	`, string(c), string(data), fp)
	if err = row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("replace %s: append history: %w", c, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO collections (name, data, fingerprint, seq)
		VALUES ($1, $2::jsonb, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			data = EXCLUDED.data,
			fingerprint = EXCLUDED.fingerprint,
			seq = EXCLUDED.seq
	`, string(c), string(data), fp, seq)
	if err != nil {
		return 0, fmt.Errorf("replace %s: %w", c, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("replace %s: commit: %w", c, err)
	}
	return seq, nil
}

// Fingerprint returns the fingerprint of the current value of c.
func (s *Store) Fingerprint(ctx context.Context, c model.Collection) (string, bool, error) {
	var fp string
	row := s.pool.QueryRow(ctx, `SELECT fingerprint FROM collections WHERE name = $1`, string(c))
	if err := row.Scan(&fp); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("fingerprint %s: %w", c, err)
	}
	return fp, true, nil
}

// History returns replaces with seq greater than afterSeq, oldest first.
// limit <= 0 means no limit.
func (s *Store) History(ctx context.Context, afterSeq int64, limit int) ([]model.HistoryEntry, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT seq, collection, data::text, fingerprint
		FROM snapshot_history
		WHERE seq > $1
		ORDER BY seq ASC
		LIMIT $2
	`, afterSeq, lim)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []model.HistoryEntry{}
	for rows.Next() {
		var (
			h    model.HistoryEntry
			name string
			data []byte
		)
		if err := rows.Scan(&h.Seq, &name, &data, &h.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		h.Collection = model.Collection(name)
		h.Data = data
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// LastSeq returns the newest history seq, or 0 when history is empty.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	row := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) FROM snapshot_history`)
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}
