package sim

import (
	"fmt"
	"time"
)

// Monitor runs the hysteresis loop against externally sampled switch closures
// (real float switches on GPIO) instead of a simulated tank. Level and
// Measured are zero in its results; only the switch, coil, and pump fields
// are meaningful.
type Monitor struct {
	ctrl    Controller
	contact ContactPolarity
}

// NewMonitor creates a monitor with the coil at rest.
func NewMonitor(contact ContactPolarity) (*Monitor, error) {
	if !contact.Valid() {
		return nil, fmt.Errorf("%w: unknown contact polarity %q", ErrInvalidConfig, contact)
	}
	return &Monitor{contact: contact}, nil
}

// Update advances the loop from one sample of raw switch closures.
func (m *Monitor) Update(rawHigh, rawLow bool, dt, debounceHigh, debounceLow time.Duration) StepResult {
	cs := m.ctrl.UpdateRaw(rawHigh, rawLow, dt, debounceHigh, debounceLow)
	return StepResult{
		HighClosed: cs.HighClosed,
		LowClosed:  cs.LowClosed,
		CoilOn:     cs.CoilOn,
		PumpOn:     PumpState(cs.CoilOn, m.contact),
	}
}
