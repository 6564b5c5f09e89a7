// Package clock provides the engine's time abstraction: a read-only
// Clock capability shared by the executor, feed, and strategies, and a
// privileged controller that only the orchestrator holds to advance it.
package clock

import (
	"errors"
	"sync"
	"time"
)

// ErrBackwardsTime is returned when AdvanceTo is called with an instant
// that does not strictly follow the clock's current time.
var ErrBackwardsTime = errors.New("clock: cannot move backwards")

// Clock exposes the current instant. It has no mutation method — only a
// ClockController, held exclusively by whoever constructed the clock, can
// move it forward.
type Clock interface {
	Now() time.Time
	UnixSeconds() int64
}

// SystemClock is the live/paper-mode clock: real wall time, no advance
// handle needed since it never needs one.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

func (SystemClock) UnixSeconds() int64 { return time.Now().UTC().Unix() }

// SimClock is the deterministic clock used by backtests. Its zero value is
// not usable; construct one with NewSimClock.
type SimClock struct {
	mu      sync.Mutex
	current time.Time
}

// ClockController is the privileged handle that can move a SimClock
// forward. NewSimClock hands the controller only to its caller (the
// orchestrator); the SimClock itself, passed to the executor and feed,
// exposes no mutator.
type ClockController struct {
	clock *SimClock
}

// NewSimClock constructs a simulated clock fixed at start, returning the
// read-only Clock and the controller that can advance it.
func NewSimClock(start time.Time) (*SimClock, *ClockController) {
	c := &SimClock{current: start}
	return c, &ClockController{clock: c}
}

func (c *SimClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *SimClock) UnixSeconds() int64 {
	return c.Now().Unix()
}

// AdvanceTo moves the clock to t. It fails with ErrBackwardsTime if t does
// not strictly follow the clock's current instant.
func (ctl *ClockController) AdvanceTo(t time.Time) error {
	ctl.clock.mu.Lock()
	defer ctl.clock.mu.Unlock()
	if !t.After(ctl.clock.current) {
		return ErrBackwardsTime
	}
	ctl.clock.current = t
	return nil
}

// Reset forcibly sets the clock to t, bypassing the monotonicity check.
// Test-only.
func (ctl *ClockController) Reset(t time.Time) {
	ctl.clock.mu.Lock()
	defer ctl.clock.mu.Unlock()
	ctl.clock.current = t
}
