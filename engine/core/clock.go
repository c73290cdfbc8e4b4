package core

import "github.com/loov/hrtime"

// Clock measures elapsed seconds on the monotonic high resolution timer.
type Clock struct {
	now       func() float64
	startTime float64
	elapsed   float64
	running   bool
}

func NewClock() *Clock {
	return &Clock{
		now: func() float64 { return hrtime.Now().Seconds() },
	}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.running {
		c.elapsed = c.now() - c.startTime
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = c.now()
	c.elapsed = 0
	c.running = true
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.running = false
}

// Elapsed returns the seconds between Start and the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}
