// Package motion turns target angles into smooth, time-bounded servo moves
// and composes those moves into the poses and dip sequences of a session.
package motion

import (
	"fmt"
	"time"

	"github.com/sweeney/tea-dunker/internal/clock"
	"github.com/sweeney/tea-dunker/internal/servo"
)

// stallInterval is slept when the clock has not moved since the previous
// write and no Interval is set, so a move always makes progress.
const stallInterval = time.Millisecond

// Mover drives an actuator along a linear trajectory.
// MoveTo blocks for the whole move and does not yield to anything else.
type Mover struct {
	clock clock.Clock

	// Interval is the pause between two writes. Zero writes as fast as the
	// loop spins.
	Interval time.Duration
}

// NewMover creates a Mover that measures progress with c.
func NewMover(c clock.Clock) *Mover {
	return &Mover{clock: c}
}

// MoveTo moves a from its current angle to dest over d.
// dest is clamped to the valid angle range. A non-positive d writes dest once.
// The last value written is always dest.
func (m *Mover) MoveTo(a servo.Actuator, dest int, d time.Duration) error {
	dest = servo.Clamp(dest)
	if d <= 0 {
		return a.Write(dest)
	}

	start, err := a.Read()
	if err != nil {
		return fmt.Errorf("read start angle: %w", err)
	}
	start = servo.Clamp(start)

	began := m.clock.Now()
	last := start
	prev := time.Duration(-1)
	for elapsed := time.Duration(0); elapsed <= d; elapsed = m.clock.Now().Sub(began) {
		last = interpolate(elapsed, d, start, dest)
		if err := a.Write(last); err != nil {
			return err
		}
		switch {
		case m.Interval > 0:
			m.clock.Sleep(m.Interval)
		case elapsed == prev:
			m.clock.Sleep(stallInterval)
		}
		prev = elapsed
	}

	// The final sample can land short of d.
	if last != dest {
		return a.Write(dest)
	}
	return nil
}

// interpolate maps elapsed in [0, d] linearly onto [from, to], truncating
// toward zero. elapsed beyond d is held at to.
func interpolate(elapsed, d time.Duration, from, to int) int {
	if elapsed >= d {
		return to
	}
	if elapsed <= 0 {
		return from
	}
	return from + int(int64(to-from)*int64(elapsed)/int64(d))
}
