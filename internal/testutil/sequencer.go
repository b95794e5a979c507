// Package testutil provides deterministic sequencing, fixtures and
// fault-injecting backends for quadstore tests.
package testutil

import "sync"

// Sequencer is a resettable source of event sequence numbers.
//
// It satisfies quadstore.Sequencer. Unlike the store's default counter it can
// be reset, so the same scenario run twice stamps identical Seq values.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Sequencer struct {
	mu  sync.Mutex
	seq int64
}

// NewSequencer creates a sequencer whose first Next() returns 1.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Next increments and returns the next sequence number.
func (s *Sequencer) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Current returns the last number handed out, or 0.
func (s *Sequencer) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Reset makes the next call to Next() return 1 again.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
}
