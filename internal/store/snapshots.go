package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/watchtower/internal/model"
)

// Read returns the current value of c.
// The second result is false when c has never been written.
func (s *Store) Read(ctx context.Context, c model.Collection) ([]byte, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM collections WHERE name = ?
	`, string(c)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", c, err)
	}
	return []byte(data), true, nil
}

// Replace sets the value of c to data and appends it to history.
// Both writes happen in one transaction.
func (s *Store) Replace(ctx context.Context, c model.Collection, data []byte) error {
	_, err := s.ReplaceSeq(ctx, c, data)
	return err
}

// ReplaceSeq is Replace returning the history seq assigned to the write.
func (s *Store) ReplaceSeq(ctx context.Context, c model.Collection, data []byte) (int64, error) {
	fp, err := model.FingerprintJSON(data)
	if err != nil {
		return 0, fmt.Errorf("replace %s: %w", c, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("replace %s: begin: %w", c, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_history (collection, data, fingerprint)
		VALUES (?, ?, ?)
	`, string(c), string(data), fp)
	if err != nil {
		return 0, fmt.Errorf("replace %s: append history: %w", c, err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("replace %s: history seq: %w", c, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collections (name, data, fingerprint, seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data = excluded.data,
			fingerprint = excluded.fingerprint,
			seq = excluded.seq
	`, string(c), string(data), fp, seq)
	if err != nil {
		return 0, fmt.Errorf("replace %s: %w", c, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("replace %s: commit: %w", c, err)
	}
	return seq, nil
}

// Fingerprint returns the fingerprint of the current value of c.
func (s *Store) Fingerprint(ctx context.Context, c model.Collection) (string, bool, error) {
	var fp string
	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint FROM collections WHERE name = ?
	`, string(c)).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("fingerprint %s: %w", c, err)
	}
	return fp, true, nil
}

// History returns replaces with seq greater than afterSeq, oldest first.
// limit <= 0 means no limit. Returns an empty slice, not nil, when there
// is nothing newer.
func (s *Store) History(ctx context.Context, afterSeq int64, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, collection, data, fingerprint
		FROM snapshot_history
		WHERE seq > ?
		ORDER BY seq ASC
		LIMIT ?
	`, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []model.HistoryEntry{}
	for rows.Next() {
		var (
			h    model.HistoryEntry
			name string
			data string
		)
		if err := rows.Scan(&h.Seq, &name, &data, &h.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		h.Collection = model.Collection(name)
		h.Data = []byte(data)
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// LastSeq returns the newest history seq, or 0 for an empty store.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM snapshot_history`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}
