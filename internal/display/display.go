// Package display drives the numeric timer display.
// The real implementation lights a single seven-segment digit through Linux
// GPIO output lines. The fake implementation records calls for tests.
package display

// Display is a numeric display that must be refreshed to show changes.
// SetNumber, SetBrightness and Blank only update the frame buffer; nothing
// reaches the hardware until Refresh.
type Display interface {
	SetNumber(n int)
	SetBrightness(pct int)
	Blank()
	Refresh() error
	Close() error
}

// SegmentCount is the number of segments in one digit (a..g, no decimal point).
const SegmentCount = 7

// DefaultSegmentPins are the BCM lines for segments a..g.
var DefaultSegmentPins = []int{17, 27, 22, 5, 6, 19, 26}

// digits maps 0..9 to segment bits, bit 0 = a ... bit 6 = g.
var digits = [10]uint8{
	0b0111111, // 0
	0b0000110, // 1
	0b1011011, // 2
	0b1001111, // 3
	0b1100110, // 4
	0b1101101, // 5
	0b1111101, // 6
	0b0000111, // 7
	0b1111111, // 8
	0b1101111, // 9
}

// minus is shown for values a single digit cannot hold.
const minus uint8 = 0b1000000

// Segments returns the segment pattern for n. Only the last decimal digit of
// a non-negative n is shown; negative values show a minus sign.
func Segments(n int) uint8 {
	if n < 0 {
		return minus
	}
	return digits[n%10]
}

// Levels expands a segment pattern into per-line output values (1 = lit).
func Levels(pattern uint8) []int {
	out := make([]int, SegmentCount)
	for i := range out {
		if pattern&(1<<i) != 0 {
			out[i] = 1
		}
	}
	return out
}

func clampPercent(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
