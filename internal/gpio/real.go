//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads buttons from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip      *gpiocdev.Chip
	selectPin *gpiocdev.Line
	startPin  *gpiocdev.Line
}

// NewRealReader creates a button reader on the given chip.
func NewRealReader(chip string, pinSelect, pinStart int) (*RealReader, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Momentary buttons short to ground; the internal pull-up holds the
	// line high while released.
	selectLine, err := c.RequestLine(pinSelect, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("request select pin %d: %w", pinSelect, err)
	}

	startLine, err := c.RequestLine(pinStart, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		selectLine.Close()
		c.Close()
		return nil, fmt.Errorf("request start pin %d: %w", pinStart, err)
	}

	return &RealReader{
		chip:      c,
		selectPin: selectLine,
		startPin:  startLine,
	}, nil
}

// Read returns the logical states of select and start.
// Inverts raw GPIO: raw low (0) = pressed, raw high (1) = released.
func (r *RealReader) Read() (bool, bool, error) {
	selectRaw, err := r.selectPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read select pin: %w", err)
	}

	startRaw, err := r.startPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read start pin: %w", err)
	}

	return selectRaw == 0, startRaw == 0, nil
}

// Close releases GPIO resources.
// Reconfigures pins to input with pull-down (matching Pi boot defaults) before
// closing so the lines are left in a known state.
func (r *RealReader) Close() error {
	var errs []error

	if r.selectPin != nil {
		if err := r.selectPin.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure select pin: %w", err))
		}
		if err := r.selectPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close select pin: %w", err))
		}
	}
	if r.startPin != nil {
		if err := r.startPin.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure start pin: %w", err))
		}
		if err := r.startPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close start pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
