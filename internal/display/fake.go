package display

// Frame is what a FakeDisplay showed at one Refresh.
type Frame struct {
	Number     int
	Blank      bool
	Brightness int
}

// FakeDisplay records every refreshed frame for test assertions.
type FakeDisplay struct {
	// Current frame buffer.
	Number     int
	IsBlank    bool
	Brightness int

	// Frames contains one entry per Refresh call.
	Frames []Frame

	// RefreshError, if set, will be returned by Refresh.
	RefreshError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDisplay creates a blank FakeDisplay at full brightness.
func NewFakeDisplay() *FakeDisplay {
	return &FakeDisplay{IsBlank: true, Brightness: 100}
}

// SetNumber sets the buffered number and clears blanking.
func (f *FakeDisplay) SetNumber(n int) {
	f.Number = n
	f.IsBlank = false
}

// SetBrightness sets the buffered brightness, clamped to 0..100.
func (f *FakeDisplay) SetBrightness(pct int) {
	f.Brightness = clampPercent(pct)
}

// Blank blanks the buffer.
func (f *FakeDisplay) Blank() {
	f.IsBlank = true
}

// Refresh records the buffered frame.
func (f *FakeDisplay) Refresh() error {
	if f.RefreshError != nil {
		return f.RefreshError
	}
	f.Frames = append(f.Frames, Frame{Number: f.Number, Blank: f.IsBlank, Brightness: f.Brightness})
	return nil
}

// Close marks the display as closed.
func (f *FakeDisplay) Close() error {
	f.Closed = true
	return nil
}

// Shown returns the refreshed frames with consecutive duplicates removed.
func (f *FakeDisplay) Shown() []Frame {
	var out []Frame
	for _, fr := range f.Frames {
		if len(out) > 0 && out[len(out)-1] == fr {
			continue
		}
		out = append(out, fr)
	}
	return out
}

// Last returns the most recently refreshed frame.
func (f *FakeDisplay) Last() Frame {
	if len(f.Frames) == 0 {
		return Frame{Number: f.Number, Blank: f.IsBlank, Brightness: f.Brightness}
	}
	return f.Frames[len(f.Frames)-1]
}

// Reset clears recorded frames.
func (f *FakeDisplay) Reset() {
	f.Frames = nil
	f.RefreshError = nil
	f.Closed = false
}
