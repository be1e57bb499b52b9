package sim

import "time"

// Controller latches the relay coil from the two debounced level switches.
//
// The latch is level-triggered, not edge-triggered: a closed high switch
// re-asserts the coil on every update, a closed low switch (with high open)
// drops it, and anywhere between the setpoints the coil holds its previous
// state. The zero value is ready to use: both switches open, coil
// de-energized.
type Controller struct {
	highDB Debouncer
	lowDB  Debouncer
	coilOn bool
}

// Update derives raw switch closures from a measured level and advances the
// debounce and latch state. Callers guarantee lowSP < highSP (enforced at
// configuration time), so both switches cannot legitimately close at once;
// UpdateRaw still resolves a simultaneous closure in favor of the high switch.
func (c *Controller) Update(measured, highSP, lowSP float64, dt, debounceHigh, debounceLow time.Duration) ControlState {
	rawHigh := measured >= highSP
	rawLow := measured <= lowSP
	return c.UpdateRaw(rawHigh, rawLow, dt, debounceHigh, debounceLow)
}

// UpdateRaw advances the debounce and latch state from raw switch closures.
// Used directly in monitor mode, where the closures come from real hardware.
func (c *Controller) UpdateRaw(rawHigh, rawLow bool, dt, debounceHigh, debounceLow time.Duration) ControlState {
	highClosed := c.highDB.Update(rawHigh, dt, debounceHigh)
	lowClosed := c.lowDB.Update(rawLow, dt, debounceLow)

	// Fixed priority: high closure energizes, low closure (alone) drops.
	if highClosed {
		c.coilOn = true
	} else if lowClosed {
		c.coilOn = false
	}

	return ControlState{
		HighClosed: highClosed,
		LowClosed:  lowClosed,
		CoilOn:     c.coilOn,
	}
}

// CoilOn returns the current latch state.
func (c *Controller) CoilOn() bool {
	return c.coilOn
}

// ResetDebounce clears both debouncers to rest without touching the latch.
func (c *Controller) ResetDebounce() {
	c.highDB.Reset()
	c.lowDB.Reset()
}

// Reset clears the debouncers and de-energizes the coil.
func (c *Controller) Reset() {
	c.ResetDebounce()
	c.coilOn = false
}
