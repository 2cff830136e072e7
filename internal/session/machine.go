// Package session runs the operator-facing state machine of the appliance:
// choose a steep time, dip, steep (cancellable), dip again, park, repeat.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sweeney/tea-dunker/internal/clock"
	"github.com/sweeney/tea-dunker/internal/config"
	"github.com/sweeney/tea-dunker/internal/display"
	"github.com/sweeney/tea-dunker/internal/gpio"
	"github.com/sweeney/tea-dunker/internal/logic"
	"github.com/sweeney/tea-dunker/internal/motion"
)

// Machine is the session state machine and its context.
// It is driven from a single goroutine; Step and Run must not be called
// concurrently.
type Machine struct {
	cal       config.Calibration
	reader    gpio.Reader
	debouncer *logic.Debouncer
	display   display.Display
	moves     *motion.Choreographer
	clock     clock.Clock
	poll      time.Duration
	reload    <-chan config.Calibration

	state        logic.State
	steepMinutes int
	shown        int
	countdown    logic.Countdown

	readFailing    bool
	refreshFailing bool
}

// New creates a Machine in the selecting state. The choreographer's poses
// and settle delay are set from cal.
func New(cal config.Calibration, reader gpio.Reader, disp display.Display, moves *motion.Choreographer, clk clock.Clock) *Machine {
	moves.SetPoses(cal.MotionPoses())
	moves.SetSettle(cal.Settle)
	return &Machine{
		cal:          cal,
		reader:       reader,
		debouncer:    logic.NewDebouncer(),
		display:      disp,
		moves:        moves,
		clock:        clk,
		state:        logic.StateSelecting,
		steepMinutes: cal.SteepMinutes,
		shown:        cal.SteepMinutes,
	}
}

// SetPoll sets the pause between selection cycles. Zero spins.
func (m *Machine) SetPoll(d time.Duration) {
	m.poll = d
}

// SetReload sets the channel of reloaded calibrations. A pending reload is
// applied when a session parks, never mid-session.
func (m *Machine) SetReload(ch <-chan config.Calibration) {
	m.reload = ch
}

// State returns the current state.
func (m *Machine) State() logic.State { return m.state }

// SteepMinutes returns the configured steep duration.
func (m *Machine) SteepMinutes() int { return m.steepMinutes }

// Shown returns the value the timer display shows.
func (m *Machine) Shown() int { return m.shown }

// Elapsed returns the tick time accumulated in the current steep.
func (m *Machine) Elapsed() time.Duration { return m.countdown.Elapsed }

// Calibration returns the calibration in effect.
func (m *Machine) Calibration() config.Calibration { return m.cal }

// Startup lights the display with the default steep time and parks the
// mechanism. A failure to park is fatal: the actuators are not usable.
func (m *Machine) Startup() error {
	m.display.SetBrightness(m.cal.Brightness)
	m.display.SetNumber(m.steepMinutes)
	m.refresh()
	if err := m.moves.ToRest(m.cal.Rest); err != nil {
		return fmt.Errorf("park at startup: %w", err)
	}
	log.Printf("ready: steep=%dmin dunks=%d/%d tick=%v", m.steepMinutes, m.cal.DunksBefore, m.cal.DunksAfter, m.cal.ClockTick)
	return nil
}

// Shutdown blanks the display and parks the mechanism.
func (m *Machine) Shutdown() {
	m.display.Blank()
	m.refresh()
	if err := m.moves.ToRest(m.cal.Rest); err != nil {
		log.Printf("park at shutdown: %v", err)
	}
}

// Run steps the machine until ctx is done. Cancellation is observed between
// steps, so a dip sequence in progress always completes.
func (m *Machine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		m.Step()
	}
}

// Step performs one unit of work in the current state: one polling cycle
// while selecting, one tick while steeping, or a whole motion sequence.
func (m *Machine) Step() {
	switch m.state {
	case logic.StateSelecting:
		m.stepSelecting()

	case logic.StatePreDip:
		// Ends submerged so the steep starts with the object in the liquid.
		if err := m.moves.DipSequence(m.cal.DunksBefore, true, m.cal.PreDip.Arm, m.cal.PreDip.Dunker); err != nil {
			log.Printf("pre-dip: %v", err)
		}
		m.countdown = logic.NewCountdown(m.steepMinutes)
		m.shown = m.steepMinutes
		m.transition(logic.StateSteeping)

	case logic.StateSteeping:
		m.stepSteeping()

	case logic.StatePostDip:
		if err := m.moves.DipSequence(m.cal.DunksAfter, false, m.cal.PostDip.Arm, m.cal.PostDip.Dunker); err != nil {
			log.Printf("post-dip: %v", err)
		}
		m.transition(logic.StateResting)

	case logic.StateResting:
		m.applyReload()
		if err := m.moves.ToRest(m.cal.Rest); err != nil {
			log.Printf("rest: %v", err)
		}
		m.shown = m.steepMinutes
		m.display.SetNumber(m.shown)
		m.refresh()
		m.transition(logic.StateSelecting)
	}
}

func (m *Machine) stepSelecting() {
	m.refresh()
	e := m.sample()

	if e.Select {
		m.steepMinutes = logic.NextSteepMinutes(m.steepMinutes)
		m.shown = m.steepMinutes
		m.display.SetNumber(m.shown)
		m.refresh()
		m.clock.Sleep(m.cal.SelectSettle)
	}

	if e.Start {
		m.display.Blank()
		m.refresh()
		m.clock.Sleep(m.cal.StartBlink)
		m.display.SetNumber(m.steepMinutes)
		m.refresh()
		log.Printf("session: steep=%dmin", m.steepMinutes)
		m.transition(logic.StatePreDip)
		return
	}

	if m.poll > 0 {
		m.clock.Sleep(m.poll)
	}
}

func (m *Machine) stepSteeping() {
	tick := m.cal.ClockTick
	m.clock.Sleep(tick)
	m.refresh()
	e := m.sample()

	if crossed := m.countdown.Advance(tick); crossed > 0 {
		m.shown -= crossed
		if m.shown < 0 {
			m.shown = 0
		}
		m.display.SetNumber(m.shown)
		m.refresh()
	}

	if e.Start {
		m.shown = 0
		m.display.SetNumber(0)
		m.refresh()
		log.Printf("session: steep cancelled with %v remaining", m.countdown.Remaining())
		m.transition(logic.StatePostDip)
		return
	}

	if m.countdown.Done() {
		m.transition(logic.StatePostDip)
	}
}

// sample reads the buttons and returns press edges. A failed read counts
// as both buttons released.
func (m *Machine) sample() logic.Edges {
	sel, start, err := m.reader.Read()
	if err != nil {
		if !m.readFailing {
			log.Printf("gpio read error: %v", err)
			m.readFailing = true
		}
		return m.debouncer.Process(logic.Levels{})
	}
	if m.readFailing {
		log.Printf("gpio read recovered")
		m.readFailing = false
	}
	return m.debouncer.Process(logic.Levels{Select: sel, Start: start})
}

func (m *Machine) refresh() {
	if err := m.display.Refresh(); err != nil {
		if !m.refreshFailing {
			log.Printf("display refresh error: %v", err)
			m.refreshFailing = true
		}
		return
	}
	m.refreshFailing = false
}

func (m *Machine) applyReload() {
	if m.reload == nil {
		return
	}
	select {
	case cal, ok := <-m.reload:
		if !ok {
			m.reload = nil
			return
		}
		m.cal = cal
		m.moves.SetPoses(cal.MotionPoses())
		m.moves.SetSettle(cal.Settle)
		m.display.SetBrightness(cal.Brightness)
		log.Printf("calibration applied")
	default:
	}
}

func (m *Machine) transition(to logic.State) {
	log.Printf("state: %s -> %s", m.state, to)
	m.state = to
}
