// Package config holds the calibration of the dipping mechanism: pose angles,
// move durations, dunk counts and timer settings. Defaults suit the stock
// mechanism; a YAML file may override any subset of them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/tea-dunker/internal/logic"
	"github.com/sweeney/tea-dunker/internal/motion"
	"github.com/sweeney/tea-dunker/internal/servo"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid calibration")

// Pose is a pair of target angles in degrees.
type Pose struct {
	Arm    int `yaml:"arm"`
	Dunker int `yaml:"dunker"`
}

// Poses are the three fixed positions.
type Poses struct {
	Rest    Pose `yaml:"rest"`
	LowDip  Pose `yaml:"low_dip"`
	HighDip Pose `yaml:"high_dip"`
}

// Timing is a pair of per-actuator move durations.
type Timing struct {
	Arm    time.Duration `yaml:"arm"`
	Dunker time.Duration `yaml:"dunker"`
}

// Calibration is the full tunable configuration of a session.
type Calibration struct {
	DunksBefore  int `yaml:"dunks_before"`
	DunksAfter   int `yaml:"dunks_after"`
	SteepMinutes int `yaml:"steep_minutes"`
	Brightness   int `yaml:"brightness"`

	ClockTick    time.Duration `yaml:"clock_tick"`
	Settle       time.Duration `yaml:"settle"`
	SelectSettle time.Duration `yaml:"select_settle"`
	StartBlink   time.Duration `yaml:"start_blink"`
	Rest         time.Duration `yaml:"rest"`

	PreDip  Timing `yaml:"pre_dip"`
	PostDip Timing `yaml:"post_dip"`

	Poses Poses `yaml:"poses"`

	// Servo pulse widths mapped to 0 and 180 degrees. Applied when the
	// servo link is opened; a reload does not change them.
	MinPulseUs int `yaml:"min_pulse_us"`
	MaxPulseUs int `yaml:"max_pulse_us"`
}

// Default returns the calibration of the stock mechanism.
func Default() Calibration {
	p := motion.DefaultPoses
	return Calibration{
		DunksBefore:  2,
		DunksAfter:   3,
		SteepMinutes: 5,
		Brightness:   50,

		ClockTick:    300 * time.Millisecond,
		Settle:       motion.DefaultSettle,
		SelectSettle: 200 * time.Millisecond,
		StartBlink:   500 * time.Millisecond,
		Rest:         500 * time.Millisecond,

		PreDip:  Timing{Arm: 400 * time.Millisecond, Dunker: 1500 * time.Millisecond},
		PostDip: Timing{Arm: 200 * time.Millisecond, Dunker: 500 * time.Millisecond},

		Poses: Poses{
			Rest:    Pose{Arm: p.Rest.Arm, Dunker: p.Rest.Dunker},
			LowDip:  Pose{Arm: p.LowDip.Arm, Dunker: p.LowDip.Dunker},
			HighDip: Pose{Arm: p.HighDip.Arm, Dunker: p.HighDip.Dunker},
		},

		MinPulseUs: servo.DefaultMinPulseUs,
		MaxPulseUs: servo.DefaultMaxPulseUs,
	}
}

// MotionPoses converts the pose table for the choreographer.
func (c Calibration) MotionPoses() motion.Poses {
	return motion.Poses{
		Rest:    motion.Pose{Arm: c.Poses.Rest.Arm, Dunker: c.Poses.Rest.Dunker},
		LowDip:  motion.Pose{Arm: c.Poses.LowDip.Arm, Dunker: c.Poses.LowDip.Dunker},
		HighDip: motion.Pose{Arm: c.Poses.HighDip.Arm, Dunker: c.Poses.HighDip.Dunker},
	}
}

// Validate checks every field's range.
func (c Calibration) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.DunksBefore >= 0, "dunks_before must be >= 0, got %d", c.DunksBefore)
	check(c.DunksAfter >= 0, "dunks_after must be >= 0, got %d", c.DunksAfter)
	check(c.SteepMinutes >= logic.MinSteepMinutes && c.SteepMinutes <= logic.MaxSteepMinutes,
		"steep_minutes must be %d..%d, got %d", logic.MinSteepMinutes, logic.MaxSteepMinutes, c.SteepMinutes)
	check(c.Brightness >= 0 && c.Brightness <= 100, "brightness must be 0..100, got %d", c.Brightness)
	check(c.ClockTick > 0, "clock_tick must be > 0, got %v", c.ClockTick)
	check(c.MinPulseUs > 0, "min_pulse_us must be > 0, got %d", c.MinPulseUs)
	check(c.MaxPulseUs > c.MinPulseUs, "max_pulse_us must be > min_pulse_us (%d), got %d", c.MinPulseUs, c.MaxPulseUs)

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"settle", c.Settle},
		{"select_settle", c.SelectSettle},
		{"start_blink", c.StartBlink},
		{"rest", c.Rest},
		{"pre_dip.arm", c.PreDip.Arm},
		{"pre_dip.dunker", c.PreDip.Dunker},
		{"post_dip.arm", c.PostDip.Arm},
		{"post_dip.dunker", c.PostDip.Dunker},
	}
	for _, d := range durations {
		check(d.d >= 0, "%s must be >= 0, got %v", d.name, d.d)
	}

	poses := []struct {
		name string
		p    Pose
	}{
		{"rest", c.Poses.Rest},
		{"low_dip", c.Poses.LowDip},
		{"high_dip", c.Poses.HighDip},
	}
	for _, p := range poses {
		check(validAngle(p.p.Arm), "poses.%s.arm must be %d..%d, got %d", p.name, servo.MinAngle, servo.MaxAngle, p.p.Arm)
		check(validAngle(p.p.Dunker), "poses.%s.dunker must be %d..%d, got %d", p.name, servo.MinAngle, servo.MaxAngle, p.p.Dunker)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func validAngle(a int) bool {
	return a >= servo.MinAngle && a <= servo.MaxAngle
}

// Parse decodes YAML over the defaults and validates the result.
// Keys absent from the document keep their default values; unknown keys
// are rejected.
func Parse(r io.Reader) (Calibration, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Calibration{}, fmt.Errorf("decode calibration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Calibration{}, err
	}
	return c, nil
}

// Load reads a calibration file. An empty path returns the defaults.
func Load(path string) (Calibration, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("read calibration: %w", err)
	}
	c, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Calibration{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
