// Package servo drives the two angle-controlled actuators (arm and dunker).
// The real implementation talks to a Pololu Maestro servo controller over a
// serial link. The fake implementation records writes for tests.
package servo

import "errors"

// Angle limits in degrees.
const (
	MinAngle = 0
	MaxAngle = 180
)

// Default pulse range in microseconds mapped to 0 and 180 degrees. Pose
// angles are calibrated against this range.
const (
	DefaultMinPulseUs = 544
	DefaultMaxPulseUs = 2400
)

// ErrNotAttached is returned when an actuator is used before Attach.
var ErrNotAttached = errors.New("servo: not attached")

// Actuator is one angle-controlled output.
type Actuator interface {
	// Attach binds the actuator to an output channel.
	Attach(channel int) error

	// Read returns the last commanded angle.
	Read() (int, error)

	// Write commands a new angle in degrees.
	Write(angle int) error
}

// Clamp limits angle to [MinAngle, MaxAngle].
func Clamp(angle int) int {
	if angle < MinAngle {
		return MinAngle
	}
	if angle > MaxAngle {
		return MaxAngle
	}
	return angle
}
