package engine

import "sync/atomic"

// Sequence numbers evaluation passes.
//
// Every pass takes the next value. The tracker records the pass at which a
// collection was last observed, and log lines carry it so a notification
// can be traced back to the replace that produced it. Wall-clock time never
// orders passes.
type Sequence struct {
	n atomic.Int64
}

// NewSequence creates a sequence whose first Next returns 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// NewSequenceAt creates a sequence resuming after start, as when replaying
// history that already used seq numbers up to start.
func NewSequenceAt(start int64) *Sequence {
	s := &Sequence{}
	s.n.Store(start)
	return s
}

// Next advances and returns the new value.
func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}

// Current returns the last value handed out, or the start value.
func (s *Sequence) Current() int64 {
	return s.n.Load()
}
