package clock

import "time"

// Clock provides time operations that can be mocked for testing.
// Room state timestamps are epoch milliseconds, so NowMs is the accessor
// most of the room logic uses.
type Clock interface {
	Now() time.Time
	NowMs() int64
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

// NowMs returns the current time as epoch milliseconds
func (c *RealClock) NowMs() int64 {
	return time.Now().UnixMilli()
}
