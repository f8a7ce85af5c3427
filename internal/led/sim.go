package led

import (
	"sync"
	"time"
)

// Sim is a headless sink that discards output while keeping scan accounting,
// so the full driver loop runs on machines without a panel attached.
type Sim struct {
	mu        sync.Mutex
	rows      uint64
	holds     map[int]time.Duration // total hold per plane
	lastPlane int
}

func NewSim() *Sim {
	return &Sim{holds: map[int]time.Duration{}}
}

func (s *Sim) ShiftRow(plane, row int, bits []byte) error {
	s.mu.Lock()
	s.rows++
	s.lastPlane = plane
	s.mu.Unlock()
	return nil
}

func (s *Sim) Latch(row int) error { return nil }

func (s *Sim) Hold(d time.Duration) error {
	s.mu.Lock()
	s.holds[s.lastPlane] += d
	s.mu.Unlock()
	return nil
}

func (s *Sim) Blank() error { return nil }
func (s *Sim) Close() error { return nil }

// RowsShifted reports how many scan rows have gone out.
func (s *Sim) RowsShifted() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

// HoldTotal reports the accumulated exposure for one bit-plane.
func (s *Sim) HoldTotal(plane int) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holds[plane]
}
