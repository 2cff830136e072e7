//go:build linux

package display

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// SevenSegment drives one common-cathode digit with a resistor per segment.
// Each segment is a plain GPIO output, so there is no dimming: any
// brightness above zero lights the digit fully and zero turns it off.
type SevenSegment struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines

	number     int
	blank      bool
	brightness int
	last       []int
}

// NewSevenSegment requests the seven segment lines (a..g) as outputs, all off.
func NewSevenSegment(chip string, pins []int) (*SevenSegment, error) {
	if len(pins) != SegmentCount {
		return nil, fmt.Errorf("display: need %d segment pins, got %d", SegmentCount, len(pins))
	}

	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines, err := c.RequestLines(pins, gpiocdev.AsOutput(make([]int, SegmentCount)...))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("request segment pins %v: %w", pins, err)
	}

	return &SevenSegment{
		chip:       c,
		lines:      lines,
		brightness: 100,
		blank:      true,
	}, nil
}

// SetNumber selects the value shown after the next Refresh.
func (s *SevenSegment) SetNumber(n int) {
	s.number = n
	s.blank = false
}

// SetBrightness sets the brightness in percent.
func (s *SevenSegment) SetBrightness(pct int) {
	s.brightness = clampPercent(pct)
}

// Blank turns all segments off at the next Refresh.
func (s *SevenSegment) Blank() {
	s.blank = true
}

// Refresh writes the frame buffer to the segment lines. Unchanged frames
// are not rewritten.
func (s *SevenSegment) Refresh() error {
	var pattern uint8
	if !s.blank && s.brightness > 0 {
		pattern = Segments(s.number)
	}
	levels := Levels(pattern)
	if equal(levels, s.last) {
		return nil
	}
	if err := s.lines.SetValues(levels); err != nil {
		return fmt.Errorf("set segments: %w", err)
	}
	s.last = levels
	return nil
}

// Close turns the digit off and releases the lines.
func (s *SevenSegment) Close() error {
	var errs []error

	if s.lines != nil {
		if err := s.lines.SetValues(make([]int, SegmentCount)); err != nil {
			errs = append(errs, fmt.Errorf("clear segments: %w", err))
		}
		if err := s.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close segment lines: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
