package sim

// ContactPolarity selects which pole pair of the DPDT relay drives the pump.
type ContactPolarity string

const (
	// ContactNC runs the pump while the coil is de-energized.
	ContactNC ContactPolarity = "NC"
	// ContactNO runs the pump while the coil is energized.
	ContactNO ContactPolarity = "NO"
)

// Valid reports whether c is a known contact polarity.
func (c ContactPolarity) Valid() bool {
	return c == ContactNC || c == ContactNO
}

// PumpState maps coil energization through the relay contact to the pump's
// on/off state.
func PumpState(coilOn bool, contact ContactPolarity) bool {
	if contact == ContactNC {
		return !coilOn
	}
	return coilOn
}
