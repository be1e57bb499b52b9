package sim

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig is returned (wrapped with detail) by Configure, Reset, and
// the per-field mutators when a parameter violates a construction invariant.
// It is the only error kind the core produces; a validly configured tank
// never fails mid-step.
var ErrInvalidConfig = errors.New("invalid config")

// Config enumerates the process and control parameters of a Tank.
// Setpoints, levels, and noise amplitude are in percent of tank capacity;
// rates are percent per second.
type Config struct {
	HighSP       float64         `json:"high_sp" mapstructure:"high_sp"`
	LowSP        float64         `json:"low_sp" mapstructure:"low_sp"`
	FillRate     float64         `json:"fill_rate" mapstructure:"fill_rate"`
	DrainRate    float64         `json:"drain_rate" mapstructure:"drain_rate"`
	NoiseAmp     float64         `json:"noise_amp" mapstructure:"noise_amp"`
	Contact      ContactPolarity `json:"contact" mapstructure:"contact"`
	Mode         PumpEffect      `json:"mode" mapstructure:"mode"`
	InitialLevel float64         `json:"initial_level" mapstructure:"initial_level"`
}

// DefaultConfig returns the parameters the original bench setup ships with.
func DefaultConfig() Config {
	return Config{
		HighSP:       75,
		LowSP:        40,
		FillRate:     6,
		DrainRate:    3,
		NoiseAmp:     0.5,
		Contact:      ContactNC,
		Mode:         EffectFill,
		InitialLevel: 50,
	}
}

// Validate checks the construction invariants. It returns an error wrapping
// ErrInvalidConfig naming the offending field, or nil.
func (c Config) Validate() error {
	if c.LowSP >= c.HighSP {
		return fmt.Errorf("%w: low setpoint %.2f must be strictly below high setpoint %.2f", ErrInvalidConfig, c.LowSP, c.HighSP)
	}
	if c.FillRate < 0 {
		return fmt.Errorf("%w: fill rate %.2f must be >= 0", ErrInvalidConfig, c.FillRate)
	}
	if c.DrainRate < 0 {
		return fmt.Errorf("%w: drain rate %.2f must be >= 0", ErrInvalidConfig, c.DrainRate)
	}
	if c.NoiseAmp < 0 {
		return fmt.Errorf("%w: noise amplitude %.2f must be >= 0", ErrInvalidConfig, c.NoiseAmp)
	}
	if c.InitialLevel < 0 || c.InitialLevel > 100 {
		return fmt.Errorf("%w: initial level %.2f outside [0,100]", ErrInvalidConfig, c.InitialLevel)
	}
	if !c.Contact.Valid() {
		return fmt.Errorf("%w: unknown contact polarity %q", ErrInvalidConfig, c.Contact)
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: unknown pump effect %q", ErrInvalidConfig, c.Mode)
	}
	return nil
}

// Tank owns the level-control loop end to end: the scalar level, the
// controller with its two debouncers, and the process parameters. It is
// driven by a single caller invoking Step on a cadence; it is not safe for
// concurrent mutation.
type Tank struct {
	cfg   Config
	level float64
	ctrl  Controller
	noise Noise
}

// NewTank validates cfg and creates a tank at the configured initial level
// with the coil de-energized. A nil noise source means noise-free operation.
func NewTank(cfg Config, noise Noise) (*Tank, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if noise == nil {
		noise = NoNoise{}
	}
	return &Tank{cfg: cfg, level: cfg.InitialLevel, noise: noise}, nil
}

// Step advances the loop by dt: sample the level with noise, debounce the
// switch closures, run the hysteresis latch, map the coil through the relay
// contact, and integrate the level under the pump's effect. The debounce
// thresholds are live parameters so readout-panel changes apply on the next
// tick. Level and Measured in the result are rounded to the 2-decimal
// display precision; the internal level is not.
func (t *Tank) Step(dt, debounceHigh, debounceLow time.Duration) StepResult {
	measured := clamp(t.level+t.noise.Uniform(t.cfg.NoiseAmp), 0, 100)

	cs := t.ctrl.Update(measured, t.cfg.HighSP, t.cfg.LowSP, dt, debounceHigh, debounceLow)
	pumpOn := PumpState(cs.CoilOn, t.cfg.Contact)

	rate := -t.cfg.DrainRate
	if pumpOn {
		rate = t.cfg.FillRate
	}
	if t.cfg.Mode == EffectDrain {
		rate = -rate
	}
	t.level = clamp(t.level+rate*dt.Seconds(), 0, 100)

	return StepResult{
		Level:      round2(t.level),
		Measured:   round2(measured),
		HighClosed: cs.HighClosed,
		LowClosed:  cs.LowClosed,
		CoilOn:     cs.CoilOn,
		PumpOn:     pumpOn,
	}
}

// Configure replaces the full parameter set. Validation happens before any
// state is touched; on success both debouncers return to rest but the level
// and the coil latch carry over. InitialLevel only takes effect through Reset.
func (t *Tank) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	t.cfg = cfg
	t.ctrl.ResetDebounce()
	return nil
}

// Reset sets the level and returns the controller to its rest state:
// debouncers cleared, coil de-energized.
func (t *Tank) Reset(level float64) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("%w: level %.2f outside [0,100]", ErrInvalidConfig, level)
	}
	t.level = level
	t.cfg.InitialLevel = level
	t.ctrl.Reset()
	return nil
}

// apply validates a candidate config and commits it. Mutators go through here
// so a rejected change leaves the tank untouched.
func (t *Tank) apply(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	t.cfg = cfg
	return nil
}

// SetHighSP updates the high setpoint.
func (t *Tank) SetHighSP(v float64) error {
	cfg := t.cfg
	cfg.HighSP = v
	return t.apply(cfg)
}

// SetLowSP updates the low setpoint.
func (t *Tank) SetLowSP(v float64) error {
	cfg := t.cfg
	cfg.LowSP = v
	return t.apply(cfg)
}

// SetFillRate updates the pump-driven rate.
func (t *Tank) SetFillRate(v float64) error {
	cfg := t.cfg
	cfg.FillRate = v
	return t.apply(cfg)
}

// SetDrainRate updates the passive rate.
func (t *Tank) SetDrainRate(v float64) error {
	cfg := t.cfg
	cfg.DrainRate = v
	return t.apply(cfg)
}

// SetNoiseAmp updates the measurement noise amplitude.
func (t *Tank) SetNoiseAmp(v float64) error {
	cfg := t.cfg
	cfg.NoiseAmp = v
	return t.apply(cfg)
}

// SetContact updates the relay contact polarity.
func (t *Tank) SetContact(v ContactPolarity) error {
	cfg := t.cfg
	cfg.Contact = v
	return t.apply(cfg)
}

// SetMode updates the pump effect.
func (t *Tank) SetMode(v PumpEffect) error {
	cfg := t.cfg
	cfg.Mode = v
	return t.apply(cfg)
}

// Level returns the true (noise-free, unrounded) level.
func (t *Tank) Level() float64 {
	return t.level
}

// CoilOn returns the current latch state.
func (t *Tank) CoilOn() bool {
	return t.ctrl.CoilOn()
}

// Config returns a copy of the current parameters.
func (t *Tank) Config() Config {
	return t.cfg
}

// TankState is the JSON round-trip form of a tank's configuration and level.
// Debounce dwell in progress is not persisted.
type TankState struct {
	Config Config  `json:"config"`
	Level  float64 `json:"level"`
	CoilOn bool    `json:"coil_on"`
}

// State captures the tank for persistence.
func (t *Tank) State() TankState {
	return TankState{Config: t.cfg, Level: t.level, CoilOn: t.ctrl.CoilOn()}
}

// RestoreTank rebuilds a tank from a saved state. Both debouncers start at
// rest; the coil latch is restored as saved.
func RestoreTank(s TankState, noise Noise) (*Tank, error) {
	t, err := NewTank(s.Config, noise)
	if err != nil {
		return nil, err
	}
	if s.Level < 0 || s.Level > 100 {
		return nil, fmt.Errorf("%w: level %.2f outside [0,100]", ErrInvalidConfig, s.Level)
	}
	t.level = s.Level
	t.ctrl.coilOn = s.CoilOn
	return t, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round2 rounds to the 2-decimal display precision used on readouts.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
