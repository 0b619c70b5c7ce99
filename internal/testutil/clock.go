package testutil

import "sync/atomic"

// DeterministicClock is a logical clock that numbers verification scenarios
// and scripted steps. Sequence numbers, not wall-clock time, order report
// entries, so two runs over the same matrix produce identical reports.
//
// Safe for concurrent use.
type DeterministicClock struct {
	seq atomic.Int64
}

// NewDeterministicClock creates a clock whose first Next returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next advances the clock and returns the new sequence number.
func (c *DeterministicClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value returned by Next, or 0.
func (c *DeterministicClock) Current() int64 {
	return c.seq.Load()
}
