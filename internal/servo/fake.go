package servo

// FakeActuator is a test double that records every written angle.
type FakeActuator struct {
	// Angle is the current commanded angle, returned by Read.
	Angle int

	// Writes contains every angle passed to Write, in order.
	Writes []int

	// Channel is the channel passed to Attach, -1 before Attach.
	Channel int

	// WriteError, if set, will be returned by Write.
	WriteError error

	// ReadError, if set, will be returned by Read.
	ReadError error

	// OnWrite, if set, is called after every successful write.
	OnWrite func(angle int)
}

// NewFakeActuator creates an unattached FakeActuator at the given angle.
func NewFakeActuator(angle int) *FakeActuator {
	return &FakeActuator{Angle: angle, Channel: -1}
}

// NewAttachedFake creates a FakeActuator already attached to channel.
func NewAttachedFake(angle, channel int) *FakeActuator {
	return &FakeActuator{Angle: angle, Channel: channel}
}

// Attach records the channel.
func (f *FakeActuator) Attach(channel int) error {
	f.Channel = channel
	return nil
}

// Read returns the current angle.
func (f *FakeActuator) Read() (int, error) {
	if f.Channel < 0 {
		return 0, ErrNotAttached
	}
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	return f.Angle, nil
}

// Write records the angle.
func (f *FakeActuator) Write(angle int) error {
	if f.Channel < 0 {
		return ErrNotAttached
	}
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Angle = angle
	f.Writes = append(f.Writes, angle)
	if f.OnWrite != nil {
		f.OnWrite(angle)
	}
	return nil
}

// Last returns the last written angle, or Angle if nothing was written.
func (f *FakeActuator) Last() int {
	if len(f.Writes) == 0 {
		return f.Angle
	}
	return f.Writes[len(f.Writes)-1]
}

// Reset clears recorded writes.
func (f *FakeActuator) Reset() {
	f.Writes = nil
	f.WriteError = nil
	f.ReadError = nil
}
