package mqtt

import (
	"errors"
	"sync"
	"testing"

	"github.com/sweeney/tea-dunker/internal/gpio"
	"github.com/sweeney/tea-dunker/internal/logic"
)

func TestTopic(t *testing.T) {
	if Topic != "dunker/command" {
		t.Errorf("unexpected topic: %s", Topic)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		payload string
		want    Button
		wantErr bool
	}{
		{"select", ButtonSelect, false},
		{"start", ButtonStart, false},
		{"  START\n", ButtonStart, false},
		{"Select", ButtonSelect, false},
		{"stop", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCommand([]byte(tt.payload))
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.payload)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.payload, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.payload, tt.want, got)
		}
	}
}

func TestPressesHandlePayload(t *testing.T) {
	p := NewPresses(DefaultQueueSize)

	if err := p.HandlePayload([]byte("start")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.HandlePayload([]byte("dance")); err == nil {
		t.Error("expected error for unknown command")
	}

	if p.Len() != 1 {
		t.Fatalf("expected 1 queued press, got %d", p.Len())
	}
	if b, ok := p.Pop(); !ok || b != ButtonStart {
		t.Errorf("expected start, got %s (%v)", b, ok)
	}
}

func TestPressesMinimumSize(t *testing.T) {
	p := NewPresses(0)
	p.Push(ButtonSelect)
	p.Push(ButtonStart)
	if p.Len() != 1 {
		t.Errorf("expected size floored to 1, got %d queued", p.Len())
	}
}

func TestPressesConcurrentPush(t *testing.T) {
	p := NewPresses(100)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Push(ButtonSelect)
		}()
	}
	wg.Wait()

	if p.Len() != 50 {
		t.Errorf("expected 50 presses, got %d", p.Len())
	}
}

func TestMergeReaderOneEdgePerRemotePress(t *testing.T) {
	inner := gpio.NewFakeReader([]gpio.Sample{gpio.Released})
	p := NewPresses(DefaultQueueSize)
	m := NewMergeReader(inner, p)
	d := logic.NewDebouncer()

	p.Push(ButtonSelect)
	p.Push(ButtonSelect)
	p.Push(ButtonStart)

	var selects, starts int
	for i := 0; i < 10; i++ {
		sel, start, err := m.Read()
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		e := d.Process(logic.Levels{Select: sel, Start: start})
		if e.Select {
			selects++
		}
		if e.Start {
			starts++
		}
	}

	if selects != 2 {
		t.Errorf("expected 2 select edges, got %d", selects)
	}
	if starts != 1 {
		t.Errorf("expected 1 start edge, got %d", starts)
	}
	if p.Len() != 0 {
		t.Errorf("expected queue drained, got %d", p.Len())
	}
}

func TestMergeReaderPassesPhysicalLevels(t *testing.T) {
	inner := gpio.NewFakeReader([]gpio.Sample{{Select: true}, {Start: true}})
	m := NewMergeReader(inner, NewPresses(DefaultQueueSize))

	sel, start, _ := m.Read()
	if !sel || start {
		t.Errorf("expected (true, false), got (%v, %v)", sel, start)
	}
	sel, start, _ = m.Read()
	if sel || !start {
		t.Errorf("expected (false, true), got (%v, %v)", sel, start)
	}
}

func TestMergeReaderError(t *testing.T) {
	inner := gpio.NewFakeReader([]gpio.Sample{gpio.Released})
	inner.ReadError = errors.New("gpio fault")
	p := NewPresses(DefaultQueueSize)
	p.Push(ButtonStart)
	m := NewMergeReader(inner, p)

	if _, _, err := m.Read(); err == nil {
		t.Error("expected error")
	}
	if p.Len() != 1 {
		t.Error("press should stay queued while the reader fails")
	}
}

func TestMergeReaderClose(t *testing.T) {
	inner := gpio.NewFakeReader([]gpio.Sample{gpio.Released})
	m := NewMergeReader(inner, NewPresses(1))
	if err := m.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inner.Closed {
		t.Error("expected inner reader closed")
	}
}
