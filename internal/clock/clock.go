// Package clock abstracts the monotonic clock and blocking sleeps used by the
// motion and session loops, so tests can drive them without real time passing.
package clock

import "time"

// Clock reports the current time and blocks the caller for a duration.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Real is the wall clock. time.Now carries a monotonic reading, so
// differences between two Now calls are immune to wall-clock jumps.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time { return time.Now() }

// Sleep calls time.Sleep.
func (Real) Sleep(d time.Duration) { time.Sleep(d) }

// Fake is a manually driven clock for tests.
// Every Now call advances the clock by Step after returning, which models
// the time a busy loop spends between two clock reads. Sleep advances the
// clock by exactly d and records the request.
// Not safe for concurrent use.
type Fake struct {
	T    time.Time
	Step time.Duration

	// Sleeps records every Sleep request in order.
	Sleeps []time.Duration
}

// NewFake creates a Fake starting at start that advances step per Now call.
// With a zero step only Sleep moves the clock, so a loop that polls Now
// without sleeping never sees time pass.
func NewFake(start time.Time, step time.Duration) *Fake {
	return &Fake{T: start, Step: step}
}

// Now returns the current fake time, then advances it by Step.
func (f *Fake) Now() time.Time {
	t := f.T
	f.T = f.T.Add(f.Step)
	return t
}

// Sleep advances the fake time by d.
func (f *Fake) Sleep(d time.Duration) {
	f.Sleeps = append(f.Sleeps, d)
	if d > 0 {
		f.T = f.T.Add(d)
	}
}

// Slept returns the sum of all recorded sleeps.
func (f *Fake) Slept() time.Duration {
	var total time.Duration
	for _, d := range f.Sleeps {
		total += d
	}
	return total
}
