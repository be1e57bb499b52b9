// Package switches provides level-switch input reading with hardware
// abstraction. The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package switches

// Reader reads the raw closures of the high and low level switches.
type Reader interface {
	// Read returns the raw closure states (high, low).
	// Raw active (1) = switch closed.
	Read() (bool, bool, error)

	// Close releases input resources.
	Close() error
}

// Default pin assignments (BCM numbering) and chip.
const (
	DefaultPinHigh = 26
	DefaultPinLow  = 16
	DefaultChip    = "gpiochip0"
)
