package sim

import "time"

// Debouncer converts a noisy boolean input into a time-stable one. The raw
// value must hold a new state for the full dwell threshold before the stable
// output adopts it.
//
// The threshold is a live parameter on Update rather than a field: callers
// may change it between calls, and an in-flight dwell keeps its accumulated
// time against the new threshold rather than restarting.
type Debouncer struct {
	stable      bool
	accumulated time.Duration
}

// Update feeds one raw sample observed for dt and returns the stable state.
// A zero threshold adopts the raw value on the first differing sample.
func (d *Debouncer) Update(raw bool, dt, threshold time.Duration) bool {
	if raw == d.stable {
		d.accumulated = 0
		return d.stable
	}
	d.accumulated += dt
	if d.accumulated >= threshold {
		d.stable = raw
		d.accumulated = 0
	}
	return d.stable
}

// Stable returns the current stable state without advancing time.
func (d *Debouncer) Stable() bool {
	return d.stable
}

// Reset returns the debouncer to its rest state: stable false, no dwell.
func (d *Debouncer) Reset() {
	d.stable = false
	d.accumulated = 0
}
