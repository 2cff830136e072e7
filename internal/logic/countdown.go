package logic

import "time"

// NextSteepMinutes returns the steep duration after one select press.
// Values cycle 1..9; 9 wraps to 1 and 0 is never produced.
func NextSteepMinutes(m int) int {
	next := (m + 1) % (MaxSteepMinutes + 1)
	if next < MinSteepMinutes {
		next = MinSteepMinutes
	}
	return next
}

// Countdown accumulates tick time towards a target.
// Elapsed time comes only from Advance, never from a clock read, so drift
// per tick equals whatever the caller spends outside the sleep.
type Countdown struct {
	Target  time.Duration
	Elapsed time.Duration
}

// NewCountdown starts a countdown of the given number of minutes.
func NewCountdown(minutes int) Countdown {
	return Countdown{Target: time.Duration(minutes) * Minute}
}

// Advance adds one tick and returns how many whole-minute boundaries the
// tick crossed. With a tick that divides a minute this is 0 or 1.
func (c *Countdown) Advance(tick time.Duration) int {
	before := c.Elapsed / Minute
	c.Elapsed += tick
	return int(c.Elapsed/Minute - before)
}

// Done reports whether the target has been reached.
func (c Countdown) Done() bool {
	return c.Elapsed >= c.Target
}

// Remaining returns the time left, never negative.
func (c Countdown) Remaining() time.Duration {
	if c.Done() {
		return 0
	}
	return c.Target - c.Elapsed
}
