// Package testutil holds deterministic stand-ins for the engine's time
// and token sources, shared across package tests.
package testutil

import (
	"sync"
	"time"
)

// Clock is a fixed, manually advanced wall clock. Handing its Now method
// to the engine keeps generated header timestamps byte-stable across
// repeated flushes in a test.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock creates a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{t: start}
}

// Now returns the clock's current instant without advancing it.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
