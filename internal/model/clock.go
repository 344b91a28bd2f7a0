package model

import (
	"sync"
	"time"
)

// Clock accounts one player's thinking time. Running out of time has no
// effect on play; Remaining simply reaches zero.
type Clock struct {
	mu          sync.Mutex
	limit       time.Duration
	used        time.Duration
	lastStarted time.Time
	isRunning   bool
	now         func() time.Time
}

func NewClock(limit time.Duration) *Clock {
	return &Clock{
		limit: limit,
		now:   time.Now,
	}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		c.lastStarted = c.now()
		c.isRunning = true
	}
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.used += c.now().Sub(c.lastStarted)
		c.isRunning = false
	}
}

// Used is the total time spent on this clock, including the running period.
func (c *Clock) Used() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return c.used + c.now().Sub(c.lastStarted)
	}
	return c.used
}

// Remaining is limit minus used, floored at zero. It is zero when the clock
// has no limit.
func (c *Clock) Remaining() time.Duration {
	left := c.limit - c.Used()
	if left < 0 {
		return 0
	}
	return left
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isRunning
}
