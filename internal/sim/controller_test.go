package sim

import (
	"testing"
	"time"
)

const noDebounce = time.Duration(0)

// update runs one controller update with zero debounce so switch closures
// take effect immediately.
func update(c *Controller, measured float64) ControlState {
	return c.Update(measured, 75, 40, 200*time.Millisecond, noDebounce, noDebounce)
}

func TestControllerInitialStateDeEnergized(t *testing.T) {
	var c Controller
	if c.CoilOn() {
		t.Error("new controller should start de-energized")
	}

	cs := update(&c, 50)
	if cs.HighClosed || cs.LowClosed {
		t.Error("mid-band level should leave both switches open")
	}
	if cs.CoilOn {
		t.Error("mid-band level should leave the coil de-energized")
	}
}

func TestControllerHysteresisLatch(t *testing.T) {
	var c Controller

	// High closure energizes.
	cs := update(&c, 80)
	if !cs.HighClosed {
		t.Error("measured 80 >= 75 should close the high switch")
	}
	if !cs.CoilOn {
		t.Error("high closure should energize the coil")
	}

	// Anywhere strictly between the setpoints the latch holds.
	for _, level := range []float64{74.99, 60, 41, 40.01} {
		cs = update(&c, level)
		if cs.HighClosed || cs.LowClosed {
			t.Errorf("level %.2f: expected both switches open", level)
		}
		if !cs.CoilOn {
			t.Errorf("level %.2f: coil should stay latched", level)
		}
	}

	// Low closure drops the latch.
	cs = update(&c, 40)
	if !cs.LowClosed {
		t.Error("measured 40 <= 40 should close the low switch")
	}
	if cs.CoilOn {
		t.Error("low closure should de-energize the coil")
	}

	// And it stays dropped back in the band.
	cs = update(&c, 60)
	if cs.CoilOn {
		t.Error("coil should stay de-energized between setpoints")
	}
}

func TestControllerHighClosureReasserted(t *testing.T) {
	var c Controller

	// The latch rule is level-triggered: a held high closure re-asserts the
	// coil every update, idempotently.
	for i := 0; i < 5; i++ {
		cs := update(&c, 90)
		if !cs.CoilOn {
			t.Errorf("update %d: coil should be energized while high is closed", i)
		}
	}
}

func TestControllerHighPriorityOverLow(t *testing.T) {
	var c Controller

	// Raw closures can only both be true under a broken configuration; the
	// high switch must win.
	cs := c.UpdateRaw(true, true, 200*time.Millisecond, noDebounce, noDebounce)
	if !cs.CoilOn {
		t.Error("simultaneous closure should resolve in favor of the high switch")
	}
}

func TestControllerDebounceDelaysLatch(t *testing.T) {
	var c Controller
	debounce := 400 * time.Millisecond
	dt := 200 * time.Millisecond

	// Two updates above the high setpoint accumulate 400ms of dwell; the
	// first must not latch yet.
	cs := c.Update(80, 75, 40, dt, debounce, debounce)
	if cs.HighClosed || cs.CoilOn {
		t.Error("high switch should still be debouncing after 200ms")
	}
	cs = c.Update(80, 75, 40, dt, debounce, debounce)
	if !cs.HighClosed || !cs.CoilOn {
		t.Error("high switch should close at 400ms of dwell")
	}
}

func TestControllerReset(t *testing.T) {
	var c Controller
	update(&c, 90)
	if !c.CoilOn() {
		t.Fatal("setup: coil should be energized")
	}

	c.Reset()
	if c.CoilOn() {
		t.Error("Reset should de-energize the coil")
	}
	if c.highDB.Stable() || c.lowDB.Stable() {
		t.Error("Reset should clear both debouncers")
	}
}

func TestControllerResetDebounceKeepsLatch(t *testing.T) {
	var c Controller
	update(&c, 90)

	c.ResetDebounce()
	if !c.CoilOn() {
		t.Error("ResetDebounce should not touch the latch")
	}
	if c.highDB.Stable() {
		t.Error("ResetDebounce should clear the high debouncer")
	}
}
