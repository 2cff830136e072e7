package logic

// Debouncer turns sampled button levels into press edges.
// It holds no timers: the caller's cycle period and settle delays are what
// keep contact chatter from producing extra edges.
type Debouncer struct {
	prev Levels
}

// NewDebouncer creates a Debouncer that treats both buttons as released.
func NewDebouncer() *Debouncer {
	return &Debouncer{}
}

// Process compares a sample with the previous one and returns the press
// edges. The sample always becomes the new previous level, so a held button
// reports exactly one edge.
func (d *Debouncer) Process(l Levels) Edges {
	e := Edges{
		Select: l.Select && !d.prev.Select,
		Start:  l.Start && !d.prev.Start,
	}
	d.prev = l
	return e
}
