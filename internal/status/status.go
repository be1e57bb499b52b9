// Package status provides a thread-safe status tracker for the levelsim
// daemon. It is read by the HTTP handlers and the websocket hub while the run
// loop writes it on every tick.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/levelsim/internal/sim"
)

// Config contains daemon configuration for display.
type Config struct {
	Mode           string // "sim" or "gpio"
	TickMs         int64
	DebounceHighMs int64
	DebounceLowMs  int64
	HeartbeatMs    int64
	Seed           int64
	Broker         string
	HTTPAddr       string

	// Tank holds the process parameters in sim mode; nil in gpio mode.
	Tank *sim.Config
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Last          sim.StepResult
	Counts        sim.EventCounts
	Ticks         int64
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// HasLevel reports whether Level/Measured in Last are meaningful.
// In gpio mode only the switch, coil, and pump fields are.
func (s Snapshot) HasLevel() bool {
	return s.Config.Mode == "sim"
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the latest step result. Called from the run loop on every tick.
func (t *Tracker) Update(res sim.StepResult) {
	t.mu.Lock()
	t.snap.Last = res
	t.snap.Ticks++
	t.mu.Unlock()
}

// RecordEvents counts transition events.
func (t *Tracker) RecordEvents(events []sim.Event) {
	if len(events) == 0 {
		return
	}
	t.mu.Lock()
	for _, e := range events {
		t.snap.Counts.Record(e)
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetTankConfig updates the displayed process parameters after a
// configuration change.
func (t *Tracker) SetTankConfig(cfg sim.Config) {
	t.mu.Lock()
	t.snap.Config.Tank = &cfg
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
