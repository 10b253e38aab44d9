// Package animation implements the polled timer that advances the
// rainbow animation.
package animation

import (
	"time"

	"k8s.io/utils/clock"
)

// Clock is a single recurring timer with an 8-bit phase counter. It never
// blocks: the owner calls Poll once per loop iteration.
//
// The phase restarts from zero on every Start and is never persisted.
type Clock struct {
	clk     clock.PassiveClock
	period  time.Duration
	last    time.Time
	running bool
	phase   uint8
}

// New returns a stopped clock reading time from clk.
func New(clk clock.PassiveClock) *Clock {
	return &Clock{clk: clk}
}

// Start arms the clock with the given period and resets the phase.
func (c *Clock) Start(period time.Duration) {
	c.period = period
	c.last = c.clk.Now()
	c.phase = 0
	c.running = true
}

// Stop disarms the clock. Stopping a stopped clock is a no-op.
func (c *Clock) Stop() {
	c.running = false
}

// Running reports whether the clock is armed.
func (c *Clock) Running() bool { return c.running }

// Period returns the period of the last Start.
func (c *Clock) Period() time.Duration { return c.period }

// Phase returns the last emitted counter value.
func (c *Clock) Phase() uint8 { return c.phase }

// Poll reports whether a period has elapsed since the last expiry and,
// if so, advances and returns the phase. Missed periods are not
// replayed: the next period is measured from now.
func (c *Clock) Poll() (uint8, bool) {
	if !c.running {
		return 0, false
	}
	now := c.clk.Now()
	if now.Sub(c.last) < c.period {
		return 0, false
	}
	c.last = now
	c.phase++
	return c.phase, true
}
