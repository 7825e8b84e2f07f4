// Package testutil provides shared test doubles for packages that need a
// pinned calendar day.
package testutil

import (
	"sync"
	"time"
)

// FixedClock is a settable clock for deterministic rotation tests.
//
// Unlike engine.RealClock it never moves on its own; tests advance it one
// calendar day at a time to walk a rotation through a schedule.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock pinned to the given instant.
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

// NewFixedClockAt creates a clock pinned to noon UTC of a YYYY-MM-DD day.
// Noon keeps the rendered local date equal to the given day for any zone
// within UTC±11, which covers every scenario the harness runs.
func NewFixedClockAt(day string) (*FixedClock, error) {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return nil, err
	}
	return &FixedClock{now: t.Add(12 * time.Hour)}, nil
}

// Now returns the pinned instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set pins the clock to a new instant.
func (c *FixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// AdvanceDays moves the clock forward by whole days.
func (c *FixedClock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}
