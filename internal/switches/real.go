//go:build linux

package switches

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the float switches from actual hardware using the Linux
// GPIO character device.
type RealReader struct {
	chip    *gpiocdev.Chip
	highPin *gpiocdev.Line
	lowPin  *gpiocdev.Line
}

// NewRealReader requests the two switch lines as inputs with pull-down.
// A closed switch pulls its line high, so raw active (1) = closed.
func NewRealReader(chip string, pinHigh, pinLow int) (*RealReader, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chip, err)
	}

	highLine, err := c.RequestLine(pinHigh, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("request high switch pin %d: %w", pinHigh, err)
	}

	lowLine, err := c.RequestLine(pinLow, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		highLine.Close()
		c.Close()
		return nil, fmt.Errorf("request low switch pin %d: %w", pinLow, err)
	}

	return &RealReader{
		chip:    c,
		highPin: highLine,
		lowPin:  lowLine,
	}, nil
}

// Read returns the raw closure states of the high and low switches.
func (r *RealReader) Read() (bool, bool, error) {
	highRaw, err := r.highPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read high switch pin: %w", err)
	}

	lowRaw, err := r.lowPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read low switch pin: %w", err)
	}

	return highRaw != 0, lowRaw != 0, nil
}

// Close releases GPIO resources. Pins are reconfigured to input with
// pull-down before closing so external wiring sees boot-default levels.
func (r *RealReader) Close() error {
	var errs []error

	if r.highPin != nil {
		if err := r.highPin.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure high switch pin: %w", err))
		}
		if err := r.highPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close high switch pin: %w", err))
		}
	}
	if r.lowPin != nil {
		if err := r.lowPin.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure low switch pin: %w", err))
		}
		if err := r.lowPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close low switch pin: %w", err))
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
