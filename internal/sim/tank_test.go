package sim

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

const stepDT = 200 * time.Millisecond

// fixedNoise always returns the same offset, regardless of amplitude.
type fixedNoise float64

func (f fixedNoise) Uniform(float64) float64 { return float64(f) }

func newTestTank(t *testing.T, cfg Config, noise Noise) *Tank {
	t.Helper()
	tank, err := NewTank(cfg, noise)
	if err != nil {
		t.Fatalf("NewTank: %v", err)
	}
	return tank
}

func TestNewTankRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"low above high", func(c *Config) { c.LowSP = 80; c.HighSP = 50 }},
		{"low equals high", func(c *Config) { c.LowSP = 50; c.HighSP = 50 }},
		{"negative fill rate", func(c *Config) { c.FillRate = -1 }},
		{"negative drain rate", func(c *Config) { c.DrainRate = -0.5 }},
		{"negative noise", func(c *Config) { c.NoiseAmp = -0.1 }},
		{"level below range", func(c *Config) { c.InitialLevel = -1 }},
		{"level above range", func(c *Config) { c.InitialLevel = 100.5 }},
		{"bad contact", func(c *Config) { c.Contact = "NX" }},
		{"bad mode", func(c *Config) { c.Mode = "PUMP" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewTank(cfg, nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

// Scenario: fill mode, NC contact, no noise. The pump starts running (coil at
// rest, NC), fills the tank to the high setpoint, the coil latches and the
// pump stops, and the level drains back down.
func TestFillModeNCCycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoiseAmp = 0
	tank := newTestTank(t, cfg, nil)

	// Step 1: measured 50, both switches open, coil stays at rest, pump on
	// through the NC contact, level rises by fill_rate*dt = 6*0.2 = 1.2.
	res := tank.Step(stepDT, 0, 0)
	if res.HighClosed || res.LowClosed {
		t.Error("step 1: both switches should be open at level 50")
	}
	if res.CoilOn {
		t.Error("step 1: coil should stay de-energized")
	}
	if !res.PumpOn {
		t.Error("step 1: pump should run with NC contact and coil off")
	}
	if res.Level != 51.2 {
		t.Errorf("step 1: level = %.2f, want 51.20", res.Level)
	}
	if res.Measured != 50 {
		t.Errorf("step 1: measured = %.2f, want 50.00", res.Measured)
	}

	// Fill until the high switch closes.
	var peak float64
	for i := 0; i < 100; i++ {
		res = tank.Step(stepDT, 0, 0)
		if res.CoilOn {
			peak = res.Measured
			break
		}
	}
	if !res.CoilOn {
		t.Fatal("coil never energized while filling")
	}
	if peak < cfg.HighSP {
		t.Errorf("coil energized at measured %.2f, below high setpoint %.2f", peak, cfg.HighSP)
	}
	if res.PumpOn {
		t.Error("pump should stop once the coil energizes (NC)")
	}

	// Now the level falls by drain_rate*dt per step.
	before := res.Level
	res = tank.Step(stepDT, 0, 0)
	if want := round2(before - 0.6); res.Level != want {
		t.Errorf("draining: level = %.2f, want %.2f", res.Level, want)
	}

	// Drain until the low switch closes and the pump resumes.
	for i := 0; i < 400; i++ {
		res = tank.Step(stepDT, 0, 0)
		if !res.CoilOn {
			break
		}
	}
	if res.CoilOn {
		t.Fatal("coil never dropped while draining")
	}
	if !res.LowClosed {
		t.Error("coil should drop on a low switch closure")
	}
	if !res.PumpOn {
		t.Error("pump should resume once the coil drops (NC)")
	}
}

// Scenario: drain mode, NO contact, starting above the high setpoint. The
// high closure energizes the coil and starts the pump, which lowers the
// level; the low closure stops it and the level rises again.
func TestDrainModeNOCycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoiseAmp = 0
	cfg.Contact = ContactNO
	cfg.Mode = EffectDrain
	cfg.InitialLevel = 80
	tank := newTestTank(t, cfg, nil)

	res := tank.Step(stepDT, 0, 0)
	if !res.HighClosed || !res.CoilOn {
		t.Fatal("step 1: high switch should close and energize the coil at level 80")
	}
	if !res.PumpOn {
		t.Error("step 1: pump should run with NO contact and coil on")
	}
	if want := round2(80 - 6*0.2); res.Level != want {
		t.Errorf("step 1: level = %.2f, want %.2f (pump lowering)", res.Level, want)
	}

	// Pump down to the low setpoint.
	for i := 0; i < 400; i++ {
		res = tank.Step(stepDT, 0, 0)
		if !res.CoilOn {
			break
		}
	}
	if res.CoilOn {
		t.Fatal("coil never dropped while pumping down")
	}
	if res.PumpOn {
		t.Error("pump should stop once the coil drops (NO)")
	}

	// With the pump off the level rises by drain_rate*dt per step.
	before := res.Level
	res = tank.Step(stepDT, 0, 0)
	if want := round2(before + 3*0.2); res.Level != want {
		t.Errorf("refilling: level = %.2f, want %.2f", res.Level, want)
	}
}

func TestLevelAndMeasuredAlwaysInRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoiseAmp = 50 // big enough to push measured past both bounds
	cfg.FillRate = 40
	cfg.DrainRate = 40
	tank := newTestTank(t, cfg, NewSeededNoise(7))

	for i := 0; i < 2000; i++ {
		res := tank.Step(stepDT, 0, 0)
		if res.Level < 0 || res.Level > 100 {
			t.Fatalf("step %d: level %.2f outside [0,100]", i, res.Level)
		}
		if res.Measured < 0 || res.Measured > 100 {
			t.Fatalf("step %d: measured %.2f outside [0,100]", i, res.Measured)
		}
	}
}

func TestMeasuredClampedAtBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialLevel = 99
	tank := newTestTank(t, cfg, fixedNoise(50))

	res := tank.Step(stepDT, 0, 0)
	if res.Measured != 100 {
		t.Errorf("measured = %.2f, want clamped 100.00", res.Measured)
	}

	cfg.InitialLevel = 1
	tank = newTestTank(t, cfg, fixedNoise(-50))
	res = tank.Step(stepDT, 0, 0)
	if res.Measured != 0 {
		t.Errorf("measured = %.2f, want clamped 0.00", res.Measured)
	}
}

func TestStepResultRounding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoiseAmp = 1
	tank := newTestTank(t, cfg, fixedNoise(0.123456))

	res := tank.Step(stepDT, 0, 0)
	if res.Measured != 50.12 {
		t.Errorf("measured = %v, want 50.12", res.Measured)
	}
	// Internal level keeps full precision.
	if want := 50.0 + 6*0.2; math.Abs(tank.Level()-want) > 1e-9 {
		t.Errorf("internal level = %v, want %v", tank.Level(), want)
	}
}

func TestDeterministicUnderSeed(t *testing.T) {
	cfg := DefaultConfig()
	a := newTestTank(t, cfg, NewSeededNoise(42))
	b := newTestTank(t, cfg, NewSeededNoise(42))

	for i := 0; i < 500; i++ {
		ra := a.Step(stepDT, 200*time.Millisecond, 200*time.Millisecond)
		rb := b.Step(stepDT, 200*time.Millisecond, 200*time.Millisecond)
		if ra != rb {
			t.Fatalf("step %d: runs diverged: %+v vs %+v", i, ra, rb)
		}
	}
}

func TestConfigureRejectsWithoutMutation(t *testing.T) {
	tank := newTestTank(t, DefaultConfig(), nil)
	tank.Step(stepDT, 0, 0)
	levelBefore := tank.Level()
	cfgBefore := tank.Config()

	bad := DefaultConfig()
	bad.LowSP = 80
	bad.HighSP = 50
	if err := tank.Configure(bad); err == nil {
		t.Fatal("expected Configure to fail")
	}

	if tank.Config() != cfgBefore {
		t.Error("failed Configure must not change the config")
	}
	if tank.Level() != levelBefore {
		t.Error("failed Configure must not change the level")
	}
}

func TestConfigureResetsDebouncersKeepsLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoiseAmp = 0
	cfg.InitialLevel = 90
	tank := newTestTank(t, cfg, nil)

	// Latch the coil and leave the high debouncer closed.
	tank.Step(stepDT, 0, 0)
	if !tank.CoilOn() {
		t.Fatal("setup: coil should be energized at level 90")
	}
	levelBefore := tank.Level()

	next := cfg
	next.FillRate = 10
	if err := tank.Configure(next); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if tank.Level() != levelBefore {
		t.Error("Configure must not reset the level")
	}
	if !tank.CoilOn() {
		t.Error("Configure must not reset the coil latch")
	}
	if tank.ctrl.highDB.Stable() || tank.ctrl.lowDB.Stable() {
		t.Error("Configure should return both debouncers to rest")
	}
}

func TestReset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoiseAmp = 0
	cfg.InitialLevel = 90
	tank := newTestTank(t, cfg, nil)
	tank.Step(stepDT, 0, 0)
	if !tank.CoilOn() {
		t.Fatal("setup: coil should be energized")
	}

	if err := tank.Reset(25); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if tank.Level() != 25 {
		t.Errorf("level = %.2f, want 25", tank.Level())
	}
	if tank.CoilOn() {
		t.Error("Reset should de-energize the coil")
	}

	if err := tank.Reset(101); err == nil {
		t.Error("Reset(101) should fail")
	}
	if tank.Level() != 25 {
		t.Error("failed Reset must not change the level")
	}
}

func TestMutators(t *testing.T) {
	tank := newTestTank(t, DefaultConfig(), nil)

	if err := tank.SetHighSP(80); err != nil {
		t.Errorf("SetHighSP(80): %v", err)
	}
	if err := tank.SetLowSP(30); err != nil {
		t.Errorf("SetLowSP(30): %v", err)
	}
	if err := tank.SetFillRate(12); err != nil {
		t.Errorf("SetFillRate(12): %v", err)
	}
	if err := tank.SetContact(ContactNO); err != nil {
		t.Errorf("SetContact(NO): %v", err)
	}
	if err := tank.SetMode(EffectDrain); err != nil {
		t.Errorf("SetMode(DRAIN): %v", err)
	}

	got := tank.Config()
	if got.HighSP != 80 || got.LowSP != 30 || got.FillRate != 12 {
		t.Errorf("mutators did not apply: %+v", got)
	}
	if got.Contact != ContactNO || got.Mode != EffectDrain {
		t.Errorf("contact/mode mutators did not apply: %+v", got)
	}

	// A mutator that breaks an invariant is rejected without side effects.
	if err := tank.SetLowSP(85); err == nil {
		t.Error("SetLowSP(85) above high 80 should fail")
	}
	if tank.Config().LowSP != 30 {
		t.Error("failed mutator must not change the config")
	}
	if err := tank.SetNoiseAmp(-1); err == nil {
		t.Error("SetNoiseAmp(-1) should fail")
	}
}

func TestStateRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoiseAmp = 0
	cfg.InitialLevel = 90
	tank := newTestTank(t, cfg, nil)
	tank.Step(stepDT, 0, 0) // latches the coil

	data, err := json.Marshal(tank.State())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var state TankState
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored, err := RestoreTank(state, nil)
	if err != nil {
		t.Fatalf("RestoreTank: %v", err)
	}
	if restored.Level() != tank.Level() {
		t.Errorf("restored level %.4f, want %.4f", restored.Level(), tank.Level())
	}
	if restored.CoilOn() != tank.CoilOn() {
		t.Errorf("restored coil %v, want %v", restored.CoilOn(), tank.CoilOn())
	}
	if restored.Config() != tank.Config() {
		t.Errorf("restored config %+v, want %+v", restored.Config(), tank.Config())
	}
}

func TestRestoreTankRejectsBadState(t *testing.T) {
	state := TankState{Config: DefaultConfig(), Level: 150}
	if _, err := RestoreTank(state, nil); err == nil {
		t.Error("expected error for out-of-range level")
	}

	state = TankState{Config: DefaultConfig(), Level: 50}
	state.Config.HighSP = 10
	if _, err := RestoreTank(state, nil); err == nil {
		t.Error("expected error for invalid config")
	}
}
