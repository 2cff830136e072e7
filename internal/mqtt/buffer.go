package mqtt

import "log"

// ringBuffer is a fixed-capacity FIFO of pending remote presses.
// Not safe for concurrent use; Presses synchronizes access.
type ringBuffer struct {
	buf      []Button
	capacity int
	head     int // next write position
	count    int
	overflow bool // true if any press was dropped since the buffer last emptied
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		buf:      make([]Button, capacity),
		capacity: capacity,
	}
}

func (r *ringBuffer) push(b Button) {
	if r.count == r.capacity {
		if !r.overflow {
			log.Printf("mqtt: press queue full (%d presses), dropping oldest", r.capacity)
			r.overflow = true
		}
		// Overwrite oldest: head is already pointing at it
		r.buf[r.head] = b
		r.head = (r.head + 1) % r.capacity
		// count stays at capacity
		return
	}
	r.buf[r.head] = b
	r.head = (r.head + 1) % r.capacity
	r.count++
}

// pop removes and returns the oldest press.
func (r *ringBuffer) pop() (Button, bool) {
	if r.count == 0 {
		return "", false
	}
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + r.capacity) % r.capacity
	b := r.buf[start]
	r.count--
	if r.count == 0 {
		r.overflow = false
	}
	return b, true
}

func (r *ringBuffer) len() int {
	return r.count
}
