package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/levelsim/internal/sim"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string      `json:"event,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	Mode          string      `json:"mode"`
	Level         *float64    `json:"level,omitempty"`
	Measured      *float64    `json:"measured,omitempty"`
	HighSwitch    string      `json:"high_switch"`
	LowSwitch     string      `json:"low_switch"`
	Coil          string      `json:"coil"`
	Pump          string      `json:"pump"`
	Ticks         int64       `json:"ticks"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	MQTT          MQTTStatus  `json:"mqtt"`
	Counts        CountsJSON  `json:"event_counts"`
	Config        ConfigJSON  `json:"config"`
	Tank          *sim.Config `json:"tank,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of transition counts.
type CountsJSON struct {
	CoilOn  int `json:"coil_on"`
	CoilOff int `json:"coil_off"`
	PumpOn  int `json:"pump_on"`
	PumpOff int `json:"pump_off"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Mode           string `json:"mode"`
	TickMs         int64  `json:"tick_ms"`
	DebounceHighMs int64  `json:"debounce_high_ms"`
	DebounceLowMs  int64  `json:"debounce_low_ms"`
	HeartbeatMs    int64  `json:"heartbeat_ms"`
	Seed           int64  `json:"seed"`
	Broker         string `json:"broker"`
	HTTPAddr       string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Mode:          snap.Config.Mode,
		HighSwitch:    openClosed(snap.Last.HighClosed),
		LowSwitch:     openClosed(snap.Last.LowClosed),
		Coil:          onOff(snap.Last.CoilOn),
		Pump:          onOff(snap.Last.PumpOn),
		Ticks:         snap.Ticks,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			CoilOn:  snap.Counts.CoilOn,
			CoilOff: snap.Counts.CoilOff,
			PumpOn:  snap.Counts.PumpOn,
			PumpOff: snap.Counts.PumpOff,
		},
		Config: ConfigJSON{
			Mode:           snap.Config.Mode,
			TickMs:         snap.Config.TickMs,
			DebounceHighMs: snap.Config.DebounceHighMs,
			DebounceLowMs:  snap.Config.DebounceLowMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			Seed:           snap.Config.Seed,
			Broker:         snap.Config.Broker,
			HTTPAddr:       snap.Config.HTTPAddr,
		},
		Tank: snap.Config.Tank,
	}

	if snap.HasLevel() {
		level := snap.Last.Level
		measured := snap.Last.Measured
		inner.Level = &level
		inner.Measured = &measured
	}

	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func openClosed(b bool) string {
	if b {
		return "CLOSED"
	}
	return "OPEN"
}
