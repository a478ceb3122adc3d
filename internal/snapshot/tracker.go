// Package snapshot retains the value each tracked collection had at the end
// of the previous evaluation pass.
//
// The Tracker is owned by a single Dispatcher and is not safe for concurrent
// use on its own; the Dispatcher's pass lock serializes all access.
package snapshot

import (
	"fmt"

	"github.com/roach88/watchtower/internal/model"
)

// Tracker maps each collection to its previous snapshot.
// A collection with no entry has no previous snapshot, which is distinct
// from a previous snapshot that was empty.
type Tracker struct {
	prev map[model.Collection]any
	seq  map[model.Collection]int64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		prev: make(map[model.Collection]any),
		seq:  make(map[model.Collection]int64),
	}
}

// Has reports whether c has a previous snapshot.
func (t *Tracker) Has(c model.Collection) bool {
	_, ok := t.prev[c]
	return ok
}

// Seq returns the pass sequence at which c was last recorded, or 0.
func (t *Tracker) Seq(c model.Collection) int64 {
	return t.seq[c]
}

// Forget drops the previous snapshot of c, as after an actor logs out.
func (t *Tracker) Forget(c model.Collection) {
	delete(t.prev, c)
	delete(t.seq, c)
}

// Reset drops every previous snapshot.
func (t *Tracker) Reset() {
	clear(t.prev)
	clear(t.seq)
}

// Collections lists the collections that currently have a previous snapshot.
func (t *Tracker) Collections() []model.Collection {
	var out []model.Collection
	for _, c := range model.Collections() {
		if t.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Get returns the previous snapshot of c.
// The second result is false when there is none.
func Get[T any](t *Tracker, c model.Collection) ([]T, bool, error) {
	v, ok := t.prev[c]
	if !ok {
		return nil, false, nil
	}
	items, ok := v.([]T)
	if !ok {
		return nil, false, fmt.Errorf("snapshot %s holds %T, not %T", c, v, items)
	}
	return items, true, nil
}

// Set records items as the previous snapshot of c at pass seq.
// The slice is copied so later mutation by the caller cannot leak in.
func Set[T any](t *Tracker, c model.Collection, items []T, seq int64) {
	stored := make([]T, len(items))
	copy(stored, items)
	t.prev[c] = stored
	t.seq[c] = seq
}
