package exam

import "time"

// Clock is a whole-second countdown. It fires exactly once, on the tick
// that takes the remaining time to zero.
type Clock struct {
	duration  int
	remaining int
	fired     bool
}

// NewClock creates a clock for d, truncated to whole seconds.
func NewClock(d time.Duration) *Clock {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return &Clock{duration: secs, remaining: secs}
}

// Tick advances the clock by one second. It reports true only on the tick
// that expires the clock; every later tick is a no-op returning false.
func (c *Clock) Tick() bool {
	if c.fired {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.fired = true
		return true
	}
	return false
}

// Remaining returns the time left on the clock.
func (c *Clock) Remaining() time.Duration {
	return time.Duration(c.remaining) * time.Second
}

// Elapsed returns duration minus remaining.
func (c *Clock) Elapsed() time.Duration {
	return time.Duration(c.duration-c.remaining) * time.Second
}

// Duration returns the configured length of the clock.
func (c *Clock) Duration() time.Duration {
	return time.Duration(c.duration) * time.Second
}

// Expired reports whether the clock has fired.
func (c *Clock) Expired() bool { return c.fired }

// Reset restores the full duration and re-arms the clock.
func (c *Clock) Reset() {
	c.remaining = c.duration
	c.fired = false
}
