package mqtt

import (
	"time"

	"github.com/sweeney/levelsim/internal/sim"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	// Samples contains all step results that were published.
	Samples []sim.StepResult

	// SamplePayloads contains the JSON payloads for samples.
	SamplePayloads [][]byte

	// Events contains all transition events that were published.
	Events []sim.Event

	// EventPayloads contains the JSON payloads for events.
	EventPayloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishSampleError, if set, will be returned by PublishSample.
	PublishSampleError error

	// PublishEventError, if set, will be returned by PublishEvent.
	PublishEventError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishSample records the step result.
func (f *FakePublisher) PublishSample(res sim.StepResult, ts time.Time) error {
	if f.PublishSampleError != nil {
		return f.PublishSampleError
	}

	f.Samples = append(f.Samples, res)

	payload, err := FormatSamplePayload(res, ts)
	if err != nil {
		return err
	}
	f.SamplePayloads = append(f.SamplePayloads, payload)

	return nil
}

// PublishEvent records the transition event.
func (f *FakePublisher) PublishEvent(event sim.Event) error {
	if f.PublishEventError != nil {
		return f.PublishEventError
	}

	f.Events = append(f.Events, event)

	payload, err := FormatEventPayload(event)
	if err != nil {
		return err
	}
	f.EventPayloads = append(f.EventPayloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded messages.
func (f *FakePublisher) Reset() {
	f.Samples = nil
	f.SamplePayloads = nil
	f.Events = nil
	f.EventPayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishSampleError = nil
	f.PublishEventError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
