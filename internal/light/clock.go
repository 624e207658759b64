package light

import "time"

// Tick counts completed execution cycles.
type Tick uint64

// Clock is the controller's logical time. All elapsed-time comparisons are in
// cycles, so a late wakeup delays a cycle but never skips one.
type Clock struct {
	period time.Duration
	now    Tick
}

// NewClock returns a clock whose cycles are period long.
func NewClock(period time.Duration) *Clock {
	return &Clock{period: period}
}

// Now returns the current tick.
func (c *Clock) Now() Tick { return c.now }

// Advance moves to the next cycle.
func (c *Clock) Advance() { c.now++ }

// Cycles converts a millisecond interval to whole cycles, rounding down, with
// a floor of one cycle so that a nonzero interval never elapses in the cycle
// that started it.
func (c *Clock) Cycles(ms uint32) Tick {
	periodMs := c.period.Milliseconds()
	if periodMs <= 0 {
		periodMs = 1
	}
	n := Tick(int64(ms) / periodMs)
	if n == 0 {
		n = 1
	}
	return n
}

// Elapsed converts a tick count back to wall-clock duration at the nominal period.
func (c *Clock) Elapsed(t Tick) time.Duration {
	return time.Duration(t) * c.period
}
