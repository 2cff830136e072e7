package motion

import (
	"fmt"
	"time"

	"github.com/sweeney/tea-dunker/internal/servo"
)

// Pose is a named pair of target angles.
type Pose struct {
	Arm    int
	Dunker int
}

// Poses holds the three fixed poses of the mechanism.
type Poses struct {
	Rest    Pose
	LowDip  Pose
	HighDip Pose
}

// DefaultPoses are the calibrated angles of the stock mechanism.
var DefaultPoses = Poses{
	Rest:    Pose{Arm: 100, Dunker: 0},
	LowDip:  Pose{Arm: 70, Dunker: 60},
	HighDip: Pose{Arm: 80, Dunker: 20},
}

// DefaultSettle is the pause between the halves of a dip.
const DefaultSettle = 100 * time.Millisecond

// Choreographer sequences moves of the arm and dunker actuators.
// All methods block until the last move completes. The first failing move
// aborts the sequence.
type Choreographer struct {
	mover  *Mover
	arm    servo.Actuator
	dunker servo.Actuator
	poses  Poses
	settle time.Duration
}

// NewChoreographer creates a Choreographer over the two actuators.
func NewChoreographer(mover *Mover, arm, dunker servo.Actuator, poses Poses, settle time.Duration) *Choreographer {
	return &Choreographer{
		mover:  mover,
		arm:    arm,
		dunker: dunker,
		poses:  poses,
		settle: settle,
	}
}

// SetPoses replaces the pose table. Only call between sequences.
func (c *Choreographer) SetPoses(p Poses) {
	c.poses = p
}

// SetSettle replaces the settle delay.
func (c *Choreographer) SetSettle(d time.Duration) {
	c.settle = d
}

// Poses returns the current pose table.
func (c *Choreographer) Poses() Poses {
	return c.poses
}

// ToRest parks the mechanism. The dunker moves first so it clears the
// vessel before the arm swings.
func (c *Choreographer) ToRest(d time.Duration) error {
	if err := c.mover.MoveTo(c.dunker, c.poses.Rest.Dunker, d); err != nil {
		return fmt.Errorf("rest dunker: %w", err)
	}
	if err := c.mover.MoveTo(c.arm, c.poses.Rest.Arm, d); err != nil {
		return fmt.Errorf("rest arm: %w", err)
	}
	return nil
}

// ToLowDip moves to the submerged pose.
func (c *Choreographer) ToLowDip(armD, dunkerD time.Duration) error {
	return c.toPose("low dip", c.poses.LowDip, armD, dunkerD)
}

// ToHighDip moves to the lifted pose.
func (c *Choreographer) ToHighDip(armD, dunkerD time.Duration) error {
	return c.toPose("high dip", c.poses.HighDip, armD, dunkerD)
}

func (c *Choreographer) toPose(name string, p Pose, armD, dunkerD time.Duration) error {
	if err := c.mover.MoveTo(c.arm, p.Arm, armD); err != nil {
		return fmt.Errorf("%s arm: %w", name, err)
	}
	if err := c.mover.MoveTo(c.dunker, p.Dunker, dunkerD); err != nil {
		return fmt.Errorf("%s dunker: %w", name, err)
	}
	return nil
}

// DipSequence performs count low/high dips. With endAtLow it settles and
// moves to the low pose once more, even when count is zero.
func (c *Choreographer) DipSequence(count int, endAtLow bool, armD, dunkerD time.Duration) error {
	for i := 0; i < count; i++ {
		if err := c.ToLowDip(armD, dunkerD); err != nil {
			return fmt.Errorf("dip %d: %w", i+1, err)
		}
		c.mover.clock.Sleep(c.settle)
		if err := c.ToHighDip(armD, dunkerD); err != nil {
			return fmt.Errorf("dip %d: %w", i+1, err)
		}
	}

	if endAtLow {
		c.mover.clock.Sleep(c.settle)
		if err := c.ToLowDip(armD, dunkerD); err != nil {
			return fmt.Errorf("final dip: %w", err)
		}
	}
	return nil
}
