// Package logic contains the pure decision rules of a dipping session.
// This package has NO external dependencies (no GPIO, servos, OS, or time.Sleep).
// Elapsed time is always passed in by the caller.
package logic

import "time"

// State is a phase of the session state machine.
type State string

const (
	StateSelecting State = "selecting"
	StatePreDip    State = "pre-dip"
	StateSteeping  State = "steeping"
	StatePostDip   State = "post-dip"
	StateResting   State = "resting"
)

// Minute is the countdown unit.
const Minute = 60000 * time.Millisecond

// Steep duration limits in minutes.
const (
	MinSteepMinutes = 1
	MaxSteepMinutes = 9
)

// Levels is a single sample of both buttons in logical form.
type Levels struct {
	Select bool // true = asserted (pressed)
	Start  bool
}

// Edges reports which buttons were pressed since the previous sample.
type Edges struct {
	Select bool
	Start  bool
}

// Any reports whether either button was pressed.
func (e Edges) Any() bool {
	return e.Select || e.Start
}
