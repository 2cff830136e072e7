package mqtt

import "github.com/sweeney/tea-dunker/internal/gpio"

// MergeReader overlays queued remote presses on a physical button reader.
// Each remote press is reported as one pressed sample followed by one
// released sample, which the debouncer sees as exactly one press edge.
type MergeReader struct {
	inner   gpio.Reader
	presses *Presses
	active  Button
}

var _ gpio.Reader = (*MergeReader)(nil)

// NewMergeReader wraps inner with the remote press queue.
func NewMergeReader(inner gpio.Reader, presses *Presses) *MergeReader {
	return &MergeReader{inner: inner, presses: presses}
}

// Read returns the physical levels ORed with the current remote press.
func (m *MergeReader) Read() (bool, bool, error) {
	sel, start, err := m.inner.Read()
	if err != nil {
		return false, false, err
	}

	if m.active != "" {
		// Release the remote press for one sample.
		m.active = ""
		return sel, start, nil
	}

	if b, ok := m.presses.Pop(); ok {
		m.active = b
		sel = sel || b == ButtonSelect
		start = start || b == ButtonStart
	}
	return sel, start, nil
}

// Close closes the wrapped reader.
func (m *MergeReader) Close() error {
	return m.inner.Close()
}
