package game

import (
	"sync"
	"time"
)

// Clock supplies the current time in seconds. Readings never decrease.
type Clock interface {
	Now() float64
}

// SystemClock measures monotonic wall time since it was created.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock reading zero now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns seconds elapsed since the clock was created.
func (c *SystemClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

// ManualClock is a controllable clock for tests and replays.
type ManualClock struct {
	mu  sync.RWMutex
	now float64
}

// NewManualClock creates a manual clock at the given time.
func NewManualClock(start float64) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Set moves the clock to t. Earlier times are ignored.
func (c *ManualClock) Set(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = max(c.now, t)
}

// Advance moves the clock forward by d seconds.
func (c *ManualClock) Advance(d float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now += d
	}
}
