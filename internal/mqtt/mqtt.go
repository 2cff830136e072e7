// Package mqtt lets an MQTT client press the appliance's buttons remotely.
// Messages on the command topic are queued as presses and merged into the
// physical button stream, so the session logic cannot tell them apart.
// Nothing about a session is ever published.
package mqtt

import (
	"fmt"
	"strings"
	"sync"
)

// Topic is the default MQTT topic for remote button commands.
const Topic = "dunker/command"

// DefaultQueueSize bounds the number of pending remote presses.
const DefaultQueueSize = 4

// Button identifies a button that can be pressed remotely.
type Button string

const (
	ButtonSelect Button = "select"
	ButtonStart  Button = "start"
)

// ParseCommand maps a message payload to a button.
// Payloads are matched case-insensitively after trimming whitespace.
func ParseCommand(payload []byte) (Button, error) {
	switch b := Button(strings.ToLower(strings.TrimSpace(string(payload)))); b {
	case ButtonSelect, ButtonStart:
		return b, nil
	default:
		return "", fmt.Errorf("unknown command %q", string(payload))
	}
}

// Presses is a bounded queue of remote presses, safe for concurrent use.
// The MQTT callback pushes; the control loop pops.
type Presses struct {
	mu  sync.Mutex
	buf *ringBuffer
}

// NewPresses creates a queue holding at most size presses.
// When full, the oldest press is dropped.
func NewPresses(size int) *Presses {
	if size < 1 {
		size = 1
	}
	return &Presses{buf: newRingBuffer(size)}
}

// Push queues a press.
func (p *Presses) Push(b Button) {
	p.mu.Lock()
	p.buf.push(b)
	p.mu.Unlock()
}

// Pop removes the oldest queued press.
func (p *Presses) Pop() (Button, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.pop()
}

// Len returns the number of queued presses.
func (p *Presses) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// HandlePayload parses a command payload and queues the press.
func (p *Presses) HandlePayload(payload []byte) error {
	b, err := ParseCommand(payload)
	if err != nil {
		return err
	}
	p.Push(b)
	return nil
}
