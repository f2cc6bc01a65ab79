package engine

import "sync/atomic"

// Sequencer hands out sequence numbers. *Clock is the production
// implementation; tests may supply a resettable one.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Clock hands out the logical sequence numbers stamped on applied events.
// Numbers start at 1 and strictly increase; wall-clock time is never used.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock whose first Next is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock whose first Next is start+1. Resumed runs use it to
// continue numbering after the last journaled event.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
