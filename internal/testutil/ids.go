package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator generates predictable identifiers for tests.
//
// Each call returns prefix-0001, prefix-0002, and so on. The same scenario
// run with a fresh SequenceGenerator produces byte-identical traces, which
// golden comparison relies on.
//
// Thread-safety: SequenceGenerator is safe for concurrent use.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator. An empty prefix becomes "id".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next identifier.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
