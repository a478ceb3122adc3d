// Package diff detects transitions between two snapshots of a collection.
//
// Compute is a pure function: it takes the previous and current element
// slices and reports which elements were added and which changed, keyed by a
// caller-supplied identity. The caller chooses which fields matter through
// Config.Equal; By builds the common single-field case.
package diff

import "github.com/roach88/watchtower/internal/model"

// Pair holds the previous and current value of one changed element.
type Pair[T any] struct {
	Old T
	New T
}

// Result lists the transitions between two snapshots.
// Both slices follow the order of the current snapshot.
type Result[T any] struct {
	Added   []T
	Changed []Pair[T]
}

// Empty reports whether no transitions were detected.
func (r Result[T]) Empty() bool {
	return len(r.Added) == 0 && len(r.Changed) == 0
}

// Config selects identity and equality for Compute.
type Config[T any, K comparable] struct {
	// Key returns the stable identity of an element.
	Key func(T) K

	// Equal reports whether two versions of the same element are equivalent
	// for this detector. Nil means deep value equality (model.Equal).
	Equal func(a, b T) bool

	// IncludeInitial reports every current element as added when there is no
	// previous snapshot. Off by default so a fresh session does not flood the
	// actor with notifications for items that already existed.
	IncludeInitial bool
}

// Compute diffs prev against curr.
//
// hasPrev distinguishes "no previous snapshot yet" from "previous snapshot was
// empty". Without a previous snapshot nothing is reported unless
// cfg.IncludeInitial is set. When a key repeats within a snapshot, the last
// occurrence wins.
func Compute[T any, K comparable](prev []T, hasPrev bool, curr []T, cfg Config[T, K]) Result[T] {
	var res Result[T]

	if !hasPrev {
		if cfg.IncludeInitial {
			res.Added = dedupe(curr, cfg.Key)
		}
		return res
	}

	equal := cfg.Equal
	if equal == nil {
		equal = func(a, b T) bool { return model.Equal(a, b) }
	}

	before := make(map[K]T, len(prev))
	for _, item := range prev {
		before[cfg.Key(item)] = item
	}

	for _, item := range dedupe(curr, cfg.Key) {
		old, ok := before[cfg.Key(item)]
		if !ok {
			res.Added = append(res.Added, item)
			continue
		}
		if !equal(old, item) {
			res.Changed = append(res.Changed, Pair[T]{Old: old, New: item})
		}
	}

	return res
}

// By returns an equality that compares only the selected field.
func By[T any, V comparable](field func(T) V) func(a, b T) bool {
	return func(a, b T) bool {
		return field(a) == field(b)
	}
}

// dedupe keeps the last occurrence of each key, positioned where that key
// first appeared.
func dedupe[T any, K comparable](items []T, key func(T) K) []T {
	index := make(map[K]int, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if i, ok := index[k]; ok {
			out[i] = item
			continue
		}
		index[k] = len(out)
		out = append(out, item)
	}
	return out
}
