package sim

import (
	"testing"
	"time"
)

func TestDiffNoChange(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	res := StepResult{CoilOn: true, PumpOn: false}

	events := Diff(res, res, now)
	if len(events) != 0 {
		t.Errorf("expected no events for identical results, got %d", len(events))
	}
}

func TestDiffSingleTransitions(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		prev StepResult
		cur  StepResult
		want EventType
	}{
		{"coil on", StepResult{}, StepResult{CoilOn: true}, EventCoilOn},
		{"coil off", StepResult{CoilOn: true}, StepResult{}, EventCoilOff},
		{"pump on", StepResult{}, StepResult{PumpOn: true}, EventPumpOn},
		{"pump off", StepResult{PumpOn: true}, StepResult{}, EventPumpOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := Diff(tt.prev, tt.cur, now)
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].Type != tt.want {
				t.Errorf("type = %s, want %s", events[0].Type, tt.want)
			}
			if !events[0].Timestamp.Equal(now) {
				t.Errorf("timestamp = %v, want %v", events[0].Timestamp, now)
			}
			if events[0].CoilOn != tt.cur.CoilOn || events[0].PumpOn != tt.cur.PumpOn {
				t.Errorf("event state %+v does not match current result", events[0])
			}
		})
	}
}

func TestDiffCoilBeforePump(t *testing.T) {
	// The usual NC case: coil energizes and the pump stops on the same step.
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := StepResult{CoilOn: false, PumpOn: true}
	cur := StepResult{CoilOn: true, PumpOn: false}

	events := Diff(prev, cur, now)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventCoilOn {
		t.Errorf("first event = %s, want COIL_ON", events[0].Type)
	}
	if events[1].Type != EventPumpOff {
		t.Errorf("second event = %s, want PUMP_OFF", events[1].Type)
	}
}

func TestEventCountsRecord(t *testing.T) {
	var counts EventCounts
	for _, typ := range []EventType{EventCoilOn, EventPumpOff, EventCoilOff, EventPumpOn, EventCoilOn} {
		counts.Record(Event{Type: typ})
	}

	if counts.CoilOn != 2 {
		t.Errorf("CoilOn = %d, want 2", counts.CoilOn)
	}
	if counts.CoilOff != 1 || counts.PumpOn != 1 || counts.PumpOff != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}
