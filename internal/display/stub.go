//go:build !linux

package display

import "errors"

// SevenSegment is not available on non-Linux platforms.
type SevenSegment struct{}

// NewSevenSegment returns an error on non-Linux platforms.
func NewSevenSegment(chip string, pins []int) (*SevenSegment, error) {
	return nil, errors.New("display: not supported on this platform (requires Linux)")
}

func (s *SevenSegment) SetNumber(n int)       {}
func (s *SevenSegment) SetBrightness(pct int) {}
func (s *SevenSegment) Blank()                {}

// Refresh is not implemented on non-Linux platforms.
func (s *SevenSegment) Refresh() error {
	return errors.New("display: not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *SevenSegment) Close() error {
	return nil
}
