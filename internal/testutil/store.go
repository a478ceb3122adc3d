package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/watchtower/internal/model"
)

// ErrInjected is returned by MemoryStore when a failure has been armed.
var ErrInjected = errors.New("injected storage failure")

// MemoryStore is an in-memory snapshot store with failure injection.
type MemoryStore struct {
	mu        sync.Mutex
	data      map[model.Collection][]byte
	failWrite map[model.Collection]bool
	failRead  map[model.Collection]bool
	writes    int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:      make(map[model.Collection][]byte),
		failWrite: make(map[model.Collection]bool),
		failRead:  make(map[model.Collection]bool),
	}
}

// Read returns the stored snapshot of c.
func (s *MemoryStore) Read(_ context.Context, c model.Collection) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRead[c] {
		return nil, false, ErrInjected
	}
	data, ok := s.data[c]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Replace stores data as the snapshot of c.
func (s *MemoryStore) Replace(_ context.Context, c model.Collection, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite[c] {
		return ErrInjected
	}
	s.data[c] = append([]byte(nil), data...)
	s.writes++
	return nil
}

// Seed stores items as the snapshot of c without counting a write.
func Seed[T any](s *MemoryStore, c model.Collection, items []T) error {
	data, err := model.Encode(items)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[c] = data
	return nil
}

// FailWrites arms or disarms write failures for c.
func (s *MemoryStore) FailWrites(c model.Collection, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrite[c] = fail
}

// FailReads arms or disarms read failures for c.
func (s *MemoryStore) FailReads(c model.Collection, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRead[c] = fail
}

// Writes returns the number of successful Replace calls.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
