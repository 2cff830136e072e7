package servo

import (
	"bytes"
	"errors"
	"testing"
)

// fakePort records writes and serves scripted read chunks.
// An empty chunk models a read timeout (0 bytes, nil error).
type fakePort struct {
	written bytes.Buffer
	reads   [][]byte
	readErr error
	closed  bool
}

func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }

func (p *fakePort) Read(b []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.reads) == 0 {
		return 0, nil
	}
	chunk := p.reads[0]
	p.reads = p.reads[1:]
	return copy(b, chunk), nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestChannelWriteEncodesSetTarget(t *testing.T) {
	port := &fakePort{}
	ctrl := NewController(port)
	ch := ctrl.NewChannel()
	if err := ch.Attach(3); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if err := ch.Write(90); err != nil {
		t.Fatalf("write: %v", err)
	}

	// 90 degrees = 1472us = 5888 quarter-us = 0x00 low7, 0x2E high7
	want := []byte{0x84, 3, 0x00, 0x2E}
	if !bytes.Equal(port.written.Bytes(), want) {
		t.Errorf("expected % x, got % x", want, port.written.Bytes())
	}
}

func TestChannelWriteClamps(t *testing.T) {
	port := &fakePort{}
	ctrl := NewController(port)
	ch := ctrl.NewChannel()
	ch.Attach(0)

	ch.Write(250)
	over := append([]byte(nil), port.written.Bytes()...)
	port.written.Reset()
	ch.Write(180)

	if !bytes.Equal(over, port.written.Bytes()) {
		t.Errorf("expected 250 to clamp to 180: % x vs % x", over, port.written.Bytes())
	}
}

func TestChannelNotAttached(t *testing.T) {
	ch := NewController(&fakePort{}).NewChannel()

	if err := ch.Write(10); !errors.Is(err, ErrNotAttached) {
		t.Errorf("write: expected ErrNotAttached, got %v", err)
	}
	if _, err := ch.Read(); !errors.Is(err, ErrNotAttached) {
		t.Errorf("read: expected ErrNotAttached, got %v", err)
	}
}

func TestChannelAttachRange(t *testing.T) {
	ch := NewController(&fakePort{}).NewChannel()
	if err := ch.Attach(-1); err == nil {
		t.Error("expected error for channel -1")
	}
	if err := ch.Attach(MaxChannel + 1); err == nil {
		t.Error("expected error for channel above MaxChannel")
	}
	if err := ch.Attach(MaxChannel); err != nil {
		t.Errorf("unexpected error for MaxChannel: %v", err)
	}
}

func TestChannelReadDecodesPosition(t *testing.T) {
	// 5888 = 0x1700, little-endian, delivered in two chunks with a timeout between
	port := &fakePort{reads: [][]byte{{0x00}, {}, {0x17}}}
	ch := NewController(port).NewChannel()
	ch.Attach(1)

	angle, err := ch.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if angle != 90 {
		t.Errorf("expected 90, got %d", angle)
	}
	if want := []byte{0x90, 1}; !bytes.Equal(port.written.Bytes(), want) {
		t.Errorf("expected get-position % x, got % x", want, port.written.Bytes())
	}
}

func TestChannelReadUncommanded(t *testing.T) {
	port := &fakePort{reads: [][]byte{{0x00, 0x00}}}
	ch := NewController(port).NewChannel()
	ch.Attach(0)

	angle, err := ch.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if angle != 90 {
		t.Errorf("expected neutral 90 for uncommanded channel, got %d", angle)
	}
}

func TestChannelReadTimeout(t *testing.T) {
	ch := NewController(&fakePort{}).NewChannel()
	ch.Attach(0)

	if _, err := ch.Read(); err == nil {
		t.Error("expected timeout error")
	}
}

func TestChannelReadError(t *testing.T) {
	ch := NewController(&fakePort{readErr: errors.New("unplugged")}).NewChannel()
	ch.Attach(0)

	if _, err := ch.Read(); err == nil {
		t.Error("expected read error")
	}
}

func TestAngleRoundTrip(t *testing.T) {
	ctrl := NewController(&fakePort{})
	for angle := MinAngle; angle <= MaxAngle; angle++ {
		if got := ctrl.targetToAngle(ctrl.angleToTarget(angle)); got != angle {
			t.Errorf("round trip %d: got %d", angle, got)
		}
	}
}

func TestSetPulseRange(t *testing.T) {
	ctrl := NewController(&fakePort{})
	if err := ctrl.SetPulseRange(1000, 900); err == nil {
		t.Error("expected error for inverted range")
	}
	if err := ctrl.SetPulseRange(1000, 2000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ctrl.angleToTarget(0); got != 4000 {
		t.Errorf("expected 0 degrees = 4000, got %d", got)
	}
	if got := ctrl.angleToTarget(180); got != 8000 {
		t.Errorf("expected 180 degrees = 8000, got %d", got)
	}
}

func TestControllerClose(t *testing.T) {
	port := &fakePort{}
	if err := NewController(port).Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !port.closed {
		t.Error("expected port to be closed")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ in, want int }{
		{-10, 0}, {0, 0}, {90, 90}, {180, 180}, {200, 180},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%d): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}
