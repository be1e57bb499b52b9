package sim

import "time"

// EventType labels a coil or pump state transition.
type EventType string

const (
	EventCoilOn  EventType = "COIL_ON"
	EventCoilOff EventType = "COIL_OFF"
	EventPumpOn  EventType = "PUMP_ON"
	EventPumpOff EventType = "PUMP_OFF"
)

// Event is a state transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	CoilOn    bool
	PumpOn    bool
}

// Diff returns the transition events between two consecutive results.
// When coil and pump change on the same step the coil event comes first.
func Diff(prev, cur StepResult, now time.Time) []Event {
	var events []Event

	if cur.CoilOn != prev.CoilOn {
		typ := EventCoilOff
		if cur.CoilOn {
			typ = EventCoilOn
		}
		events = append(events, Event{Timestamp: now, Type: typ, CoilOn: cur.CoilOn, PumpOn: cur.PumpOn})
	}

	if cur.PumpOn != prev.PumpOn {
		typ := EventPumpOff
		if cur.PumpOn {
			typ = EventPumpOn
		}
		events = append(events, Event{Timestamp: now, Type: typ, CoilOn: cur.CoilOn, PumpOn: cur.PumpOn})
	}

	return events
}

// EventCounts tracks the number of each transition since startup.
type EventCounts struct {
	CoilOn  int
	CoilOff int
	PumpOn  int
	PumpOff int
}

// Record increments the counter for e.
func (c *EventCounts) Record(e Event) {
	switch e.Type {
	case EventCoilOn:
		c.CoilOn++
	case EventCoilOff:
		c.CoilOff++
	case EventPumpOn:
		c.PumpOn++
	case EventPumpOff:
		c.PumpOff++
	}
}
