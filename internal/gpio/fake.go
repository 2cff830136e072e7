package gpio

import "errors"

// FakeReader is a test double that returns scripted button values.
type FakeReader struct {
	// Samples contains scripted (select, start) values to return.
	// Each call to Read() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Reads counts calls to Read.
	Reads int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// Sample represents a single button reading (already in logical form).
type Sample struct {
	Select bool // true = pressed
	Start  bool // true = pressed
}

// Released is the idle sample.
var Released = Sample{}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (bool, bool, error) {
	f.Reads++
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

	return sample.Select, sample.Start, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Reads = 0
	f.Closed = false
}

// Press returns a sample sequence for one press and release of a button:
// n released samples, one pressed sample, then a released sample.
func Press(selectBtn bool, n int) []Sample {
	out := make([]Sample, 0, n+2)
	for i := 0; i < n; i++ {
		out = append(out, Released)
	}
	if selectBtn {
		out = append(out, Sample{Select: true})
	} else {
		out = append(out, Sample{Start: true})
	}
	return append(out, Released)
}
