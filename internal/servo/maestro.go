package servo

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Maestro compact protocol commands.
const (
	cmdSetTarget   = 0x84
	cmdGetPosition = 0x90
)

// MaxChannel is the highest channel number on the largest Maestro (24 channels).
const MaxChannel = 23

// readAttempts bounds how many timed-out reads Read tolerates before giving up.
const readAttempts = 3

// Controller owns the serial link to a Maestro servo controller.
// Channels created from one Controller share the link.
type Controller struct {
	mu   sync.Mutex
	port io.ReadWriteCloser

	minPulseUs int
	maxPulseUs int
}

// OpenController opens the Maestro's command port (usually /dev/ttyACM0).
// The Maestro auto-detects the baud rate in USB dual-port mode.
func OpenController(portName string) (*Controller, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: 115200})
	if err != nil {
		return nil, fmt.Errorf("open servo port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return NewController(port), nil
}

// NewController wraps an already open link.
func NewController(port io.ReadWriteCloser) *Controller {
	return &Controller{
		port:       port,
		minPulseUs: DefaultMinPulseUs,
		maxPulseUs: DefaultMaxPulseUs,
	}
}

// SetPulseRange overrides the pulse widths mapped to 0 and 180 degrees.
func (c *Controller) SetPulseRange(minUs, maxUs int) error {
	if minUs <= 0 || maxUs <= minUs {
		return fmt.Errorf("invalid pulse range %d..%d", minUs, maxUs)
	}
	c.mu.Lock()
	c.minPulseUs = minUs
	c.maxPulseUs = maxUs
	c.mu.Unlock()
	return nil
}

// NewChannel returns an unattached actuator on this controller.
func (c *Controller) NewChannel() *Channel {
	return &Channel{ctrl: c, channel: -1}
}

// Close closes the serial link.
func (c *Controller) Close() error {
	return c.port.Close()
}

// angleToTarget converts degrees to the Maestro's quarter-microsecond units.
func (c *Controller) angleToTarget(angle int) int {
	span := c.maxPulseUs - c.minPulseUs
	pulse := c.minPulseUs + (angle*span+MaxAngle/2)/MaxAngle
	return pulse * 4
}

// targetToAngle is the inverse of angleToTarget, rounded to the nearest degree.
func (c *Controller) targetToAngle(target int) int {
	span := c.maxPulseUs - c.minPulseUs
	pulse := (target + 2) / 4
	return Clamp(((pulse-c.minPulseUs)*MaxAngle + span/2) / span)
}

func (c *Controller) setTarget(channel, angle int) error {
	target := c.angleToTarget(Clamp(angle))
	cmd := []byte{cmdSetTarget, byte(channel), byte(target & 0x7F), byte((target >> 7) & 0x7F)}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.port.Write(cmd); err != nil {
		return fmt.Errorf("set target channel %d: %w", channel, err)
	}
	return nil
}

func (c *Controller) getPosition(channel int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.port.Write([]byte{cmdGetPosition, byte(channel)}); err != nil {
		return 0, fmt.Errorf("get position channel %d: %w", channel, err)
	}

	var buf [2]byte
	n, misses := 0, 0
	for n < len(buf) {
		m, err := c.port.Read(buf[n:])
		if err != nil {
			return 0, fmt.Errorf("read position channel %d: %w", channel, err)
		}
		if m == 0 {
			misses++
			if misses >= readAttempts {
				return 0, fmt.Errorf("read position channel %d: timeout", channel)
			}
			continue
		}
		n += m
	}
	return int(buf[0]) | int(buf[1])<<8, nil
}

// Channel is one servo output on a Maestro.
type Channel struct {
	ctrl    *Controller
	channel int
}

// Attach binds the actuator to a Maestro channel.
func (ch *Channel) Attach(channel int) error {
	if channel < 0 || channel > MaxChannel {
		return fmt.Errorf("servo: channel %d out of range 0..%d", channel, MaxChannel)
	}
	ch.channel = channel
	return nil
}

// Read returns the channel's current target as an angle.
// A channel that has never been commanded reports 90 degrees, the same
// neutral position hobby servo drivers assume at power-up.
func (ch *Channel) Read() (int, error) {
	if ch.channel < 0 {
		return 0, ErrNotAttached
	}
	target, err := ch.ctrl.getPosition(ch.channel)
	if err != nil {
		return 0, err
	}
	if target == 0 {
		return 90, nil
	}
	return ch.ctrl.targetToAngle(target), nil
}

// Write commands the channel to angle, clamped to 0..180.
func (ch *Channel) Write(angle int) error {
	if ch.channel < 0 {
		return ErrNotAttached
	}
	return ch.ctrl.setTarget(ch.channel, angle)
}
