package engine

import (
	"fmt"
	"time"
)

// tickInterval is the cadence hosts should drive Countdown.Tick at.
const tickInterval = 100 * time.Millisecond

// Countdown is a pure time-based completion check, independent of the text
// criteria and composable alongside them. It is passive: it owns no timer
// and only advances when the host calls Tick, so a tick scheduled before a
// Reset lands afterwards as a no-op instead of firing into fresh state.
type Countdown struct {
	duration time.Duration

	startedAt   time.Time
	pausedAt    time.Time
	endedAt     time.Time
	pausedTotal time.Duration
	done        bool
}

// NewCountdown builds a countdown over the given span. It fails on
// non-positive durations, since such a countdown could never run.
func NewCountdown(d time.Duration) (*Countdown, error) {
	if d <= 0 {
		return nil, fmt.Errorf("engine: countdown duration must be positive, got %v", d)
	}
	return &Countdown{duration: d}, nil
}

// TickInterval returns the cadence hosts should schedule ticks at.
func (c *Countdown) TickInterval() time.Duration { return tickInterval }

// Duration returns the configured span.
func (c *Countdown) Duration() time.Duration { return c.duration }

// Start begins the countdown. Starting twice is a no-op.
func (c *Countdown) Start(now time.Time) bool {
	if !c.startedAt.IsZero() {
		return false
	}
	c.startedAt = now
	return true
}

// Pause freezes the elapsed time. No ticks advance the countdown while
// paused.
func (c *Countdown) Pause(now time.Time) bool {
	if c.startedAt.IsZero() || c.done || !c.pausedAt.IsZero() {
		return false
	}
	c.pausedAt = now
	return true
}

// Resume continues from the frozen elapsed time. The countdown never
// restarts from zero on resume.
func (c *Countdown) Resume(now time.Time) bool {
	if c.pausedAt.IsZero() || c.done {
		return false
	}
	c.pausedTotal += now.Sub(c.pausedAt)
	c.pausedAt = time.Time{}
	return true
}

// Tick advances the countdown and returns true exactly once, on the first
// tick at or after the duration has elapsed. Ticks before start, while
// paused, after completion, or after a reset report false and change
// nothing.
func (c *Countdown) Tick(now time.Time) bool {
	if c.startedAt.IsZero() || !c.pausedAt.IsZero() || c.done {
		return false
	}
	if c.Elapsed(now) < c.duration {
		return false
	}
	c.done = true
	c.endedAt = now
	return true
}

// Elapsed returns the unpaused time since start: frozen while paused and
// fixed at the firing tick once done. Zero before start.
func (c *Countdown) Elapsed(now time.Time) time.Duration {
	if c.startedAt.IsZero() {
		return 0
	}
	end := now
	switch {
	case c.done:
		end = c.endedAt
	case !c.pausedAt.IsZero():
		end = c.pausedAt
	}
	return end.Sub(c.startedAt) - c.pausedTotal
}

// Remaining returns the time left, never negative.
func (c *Countdown) Remaining(now time.Time) time.Duration {
	left := c.duration - c.Elapsed(now)
	if left < 0 {
		return 0
	}
	return left
}

// Running reports whether ticks currently advance the countdown.
func (c *Countdown) Running() bool {
	return !c.startedAt.IsZero() && c.pausedAt.IsZero() && !c.done
}

// Done reports whether the countdown has fired.
func (c *Countdown) Done() bool { return c.done }

// Reset cancels the countdown unconditionally and returns it to the
// unstarted state.
func (c *Countdown) Reset() {
	c.startedAt = time.Time{}
	c.pausedAt = time.Time{}
	c.endedAt = time.Time{}
	c.pausedTotal = 0
	c.done = false
}
