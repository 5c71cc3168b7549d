package clock

import "time"

// Clock provides time operations that can be mocked for testing.
// Used for session expiry and snapshot cache age.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t according to clk
func Since(clk Clock, t time.Time) time.Duration {
	return clk.Now().Sub(t)
}
