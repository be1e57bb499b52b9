// Package sim implements the two-point level-control loop: two debounced
// level switches, a hysteresis-latched relay coil, a DPDT contact mapping to
// the pump, and the tank level dynamics driven by the pump.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injected as explicit durations.
package sim

// PumpEffect determines the sign of the level change while the pump runs.
type PumpEffect string

const (
	// EffectFill raises the level while the pump is on; the tank drains on
	// its own while the pump is off.
	EffectFill PumpEffect = "FILL"
	// EffectDrain lowers the level while the pump is on; the tank refills on
	// its own while the pump is off.
	EffectDrain PumpEffect = "DRAIN"
)

// Valid reports whether e is a known pump effect.
func (e PumpEffect) Valid() bool {
	return e == EffectFill || e == EffectDrain
}

// ControlState is the controller's per-update output.
type ControlState struct {
	HighClosed bool
	LowClosed  bool
	CoilOn     bool
}

// StepResult is the value produced by each simulation step. It is immutable
// once produced and carries everything the status, trend, and relay-diagram
// consumers need. In monitor mode (real switches, no simulated tank) Level
// and Measured are zero and only the boolean fields are meaningful.
type StepResult struct {
	Level      float64 `json:"level"`
	Measured   float64 `json:"measured"`
	HighClosed bool    `json:"high_closed"`
	LowClosed  bool    `json:"low_closed"`
	CoilOn     bool    `json:"coil_on"`
	PumpOn     bool    `json:"pump_on"`
}
