// Package store provides SQLite-backed snapshot storage.
//
// The store keeps two things:
//   - collections: the current value of each collection, replaced whole
//   - snapshot_history: every replace ever made, ordered by seq
//
// A replace writes both in one transaction, so the current value and the
// history never disagree. History is what replay and the daemon's poll loop
// read; seq is the only ordering, never wall-clock time.
//
// Values are stored as the caller supplied them. The engine hands over
// canonical JSON, so the fingerprint (domain-separated SHA-256 of the
// canonical form) of two equal snapshots is identical.
//
// # Connection settings
//
// Open passes these as go-sqlite3 DSN parameters, so every pooled
// connection gets them: WAL journaling with synchronous=NORMAL (file
// databases only), a 5s busy timeout, and foreign keys on, which ties
// collections.seq to a history row. Schema upgrades are keyed on
// PRAGMA user_version.
package store
