// Package gpio provides button input reading with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the select and start buttons.
type Reader interface {
	// Read returns the logical states of select and start.
	// Buttons are wired active-low with pull-ups: raw low = logical pressed.
	// Returns (selectPressed, startPressed, error).
	Read() (bool, bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultPinSelect = 8
	DefaultPinStart  = 13
)

// DefaultChip is the GPIO character device on a Raspberry Pi.
const DefaultChip = "gpiochip0"
