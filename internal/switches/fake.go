package switches

import "errors"

// Sample represents a single reading of the two raw switch closures.
type Sample struct {
	High bool
	Low  bool
}

// FakeReader is a test double that returns scripted switch readings.
type FakeReader struct {
	// Samples contains scripted readings. Each call to Read consumes the
	// next sample; once exhausted, the last sample repeats.
	Samples []Sample

	// ReadError, if set, will be returned by Read.
	ReadError error

	// Closed tracks whether Close was called.
	Closed bool

	index int
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeReader) Read() (bool, bool, error) {
	if f.ReadError != nil {
		return false, false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample.High, sample.Low, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the reader to the beginning of its samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
