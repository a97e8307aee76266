// Package marketdata provides MarketData stream adapters: an in-memory
// slice (fixtures, tests), a CSV fixture loader, a SQLite-backed stream, a
// Parquet-backed stream, and a pacing wrapper for simulated-time replay.
package marketdata

import (
	"sort"

	"github.com/yannickvh/ctrade/internal/domain"
	"github.com/yannickvh/ctrade/internal/ports"
)

// Compile-time interface check.
var _ ports.MarketData = (*SliceData)(nil)

// SliceData streams a fixed slice of bars. The constructor sorts by
// timestamp, so the non-decreasing invariant holds even for unsorted input.
// The cursor starts before the first element.
type SliceData struct {
	states []domain.MarketState
	idx    int
}

// NewSliceData creates a stream over a copy of the given bars, sorted by
// timestamp.
func NewSliceData(states []domain.MarketState) *SliceData {
	owned := make([]domain.MarketState, len(states))
	copy(owned, states)
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].Timestamp < owned[j].Timestamp
	})
	return &SliceData{states: owned, idx: -1}
}

// Next advances the cursor.
func (s *SliceData) Next() bool {
	if s.idx+1 >= len(s.states) {
		return false
	}
	s.idx++
	return true
}

// Current returns the bar at the cursor. Only valid after a Next that
// returned true.
func (s *SliceData) Current() domain.MarketState {
	return s.states[s.idx]
}

// Err always returns nil: an in-memory stream cannot fail.
func (s *SliceData) Err() error {
	return nil
}
