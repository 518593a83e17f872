package testutil

import (
	"sync"
	"time"
)

// StepClock hands out evenly spaced UTC timestamps for building audit
// records in tests.
//
// The first call to Next returns the start time; every later call advances
// by one step. Reset rewinds to the start so a scenario can be replayed
// with identical timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	n     int64
}

// NewStepClock creates a clock starting at start (normalized to UTC) and
// advancing by step.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{start: start.UTC(), step: step}
}

// Next returns the current timestamp and advances the clock.
func (c *StepClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Current returns the timestamp the next call to Next will return.
func (c *StepClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start.Add(time.Duration(c.n) * c.step)
}

// Skip advances the clock by d without consuming a step.
func (c *StepClock) Skip(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = c.start.Add(d)
}

// Reset rewinds the clock to its original start.
func (c *StepClock) Reset(start time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = start.UTC()
	c.n = 0
}
