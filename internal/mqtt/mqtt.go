// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/levelsim/internal/sim"
)

// TopicSamples carries one message per simulation step.
const TopicSamples = "process/tank/levelsim/samples"

// TopicEvents carries coil and pump transition events.
const TopicEvents = "process/tank/levelsim/events"

// TopicSystem carries system lifecycle events.
const TopicSystem = "process/tank/levelsim/system"

// Publisher publishes simulation output to MQTT.
type Publisher interface {
	// PublishSample sends one step result to the broker. Samples are
	// perishable; implementations may drop them while disconnected.
	PublishSample(res sim.StepResult, ts time.Time) error

	// PublishEvent sends a coil/pump transition event to the broker.
	PublishEvent(event sim.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SamplePayload is the MQTT message payload for a step result.
type SamplePayload struct {
	Tank TankPayload `json:"tank"`
}

// TankPayload contains the per-step readings.
type TankPayload struct {
	Timestamp  string  `json:"timestamp"`
	Level      float64 `json:"level"`
	Measured   float64 `json:"measured"`
	HighSwitch string  `json:"high_switch"`
	LowSwitch  string  `json:"low_switch"`
	Coil       string  `json:"coil"`
	Pump       string  `json:"pump"`
}

// EventPayload is the MQTT message payload for a transition event.
type EventPayload struct {
	Event EventPayloadInner `json:"event"`
}

// EventPayloadInner contains the transition details.
type EventPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Coil      string `json:"coil"`
	Pump      string `json:"pump"`
}

// FormatSamplePayload creates the JSON payload for a step result.
func FormatSamplePayload(res sim.StepResult, ts time.Time) ([]byte, error) {
	payload := SamplePayload{
		Tank: TankPayload{
			Timestamp:  ts.UTC().Format(time.RFC3339),
			Level:      res.Level,
			Measured:   res.Measured,
			HighSwitch: openClosed(res.HighClosed),
			LowSwitch:  openClosed(res.LowClosed),
			Coil:       onOff(res.CoilOn),
			Pump:       onOff(res.PumpOn),
		},
	}
	return json.Marshal(payload)
}

// FormatEventPayload creates the JSON payload for a transition event.
func FormatEventPayload(event sim.Event) ([]byte, error) {
	payload := EventPayload{
		Event: EventPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Type:      string(event.Type),
			Coil:      onOff(event.CoilOn),
			Pump:      onOff(event.PumpOn),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
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
