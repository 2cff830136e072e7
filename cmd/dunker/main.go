// Command dunker runs the tea-dunker: pick a steep time, dip, steep, dip again, park.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/tea-dunker/internal/clock"
	"github.com/sweeney/tea-dunker/internal/config"
	"github.com/sweeney/tea-dunker/internal/display"
	"github.com/sweeney/tea-dunker/internal/gpio"
	"github.com/sweeney/tea-dunker/internal/motion"
	"github.com/sweeney/tea-dunker/internal/mqtt"
	"github.com/sweeney/tea-dunker/internal/servo"
	"github.com/sweeney/tea-dunker/internal/session"
)

// moveInterval paces trajectory writes so the serial link keeps up.
const moveInterval = 5 * time.Millisecond

type options struct {
	pinSelect     int
	pinStart      int
	segments      []int
	chip          string
	servoPort     string
	armChannel    int
	dunkerChannel int
	poll          time.Duration
	configPath    string
	broker        string
	topic         string
	printState    bool
}

func main() {
	var opts options
	flag.IntVar(&opts.pinSelect, "pin-select", gpio.DefaultPinSelect, "BCM pin number for the select button")
	flag.IntVar(&opts.pinStart, "pin-start", gpio.DefaultPinStart, "BCM pin number for the start/cancel button")
	segments := flag.String("segments", formatPins(display.DefaultSegmentPins), "Comma-separated BCM pins for display segments a..g")
	flag.StringVar(&opts.chip, "chip", gpio.DefaultChip, "GPIO character device")
	flag.StringVar(&opts.servoPort, "servo-port", "/dev/ttyACM0", "Serial port of the servo controller")
	flag.IntVar(&opts.armChannel, "arm-channel", 0, "Servo controller channel for the arm")
	flag.IntVar(&opts.dunkerChannel, "dunker-channel", 1, "Servo controller channel for the dunker")
	flag.DurationVar(&opts.poll, "poll", 10*time.Millisecond, "Button polling interval while selecting (0 to spin)")
	flag.StringVar(&opts.configPath, "config", "", "Calibration YAML file, reloaded on change (empty for defaults)")
	flag.StringVar(&opts.broker, "broker", "", "MQTT broker address for remote buttons (empty to disable)")
	flag.StringVar(&opts.topic, "topic", mqtt.Topic, "MQTT topic for remote button commands")
	flag.BoolVar(&opts.printState, "print-state", false, "Print button levels and servo angles and exit")

	flag.Parse()

	pins, err := parsePins(*segments)
	if err != nil {
		log.Fatalf("fatal: -segments: %v", err)
	}
	opts.segments = pins

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(opts options) error {
	cal, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load calibration: %w", err)
	}

	// Initialize GPIO
	buttons, err := gpio.NewRealReader(opts.chip, opts.pinSelect, opts.pinStart)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer buttons.Close()

	// Initialize servos
	ctrl, err := servo.OpenController(opts.servoPort)
	if err != nil {
		return fmt.Errorf("init servo controller: %w", err)
	}
	defer ctrl.Close()

	arm, dunker, err := attachServos(ctrl, cal, opts.armChannel, opts.dunkerChannel)
	if err != nil {
		return err
	}

	// Print state mode
	if opts.printState {
		return printState(os.Stdout, buttons, arm, dunker)
	}

	disp, err := display.NewSevenSegment(opts.chip, opts.segments)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	defer disp.Close()

	var input gpio.Reader = buttons
	if opts.broker != "" {
		presses := mqtt.NewPresses(mqtt.DefaultQueueSize)
		remote, err := mqtt.NewRealRemote(opts.broker, opts.topic, presses)
		if err != nil {
			// Physical buttons still work.
			log.Printf("mqtt: remote buttons disabled: %v", err)
		} else {
			defer remote.Close()
			input = mqtt.NewMergeReader(buttons, presses)
			log.Printf("mqtt: remote buttons on %s %s", opts.broker, opts.topic)
		}
	}

	clk := clock.Real{}
	mover := motion.NewMover(clk)
	mover.Interval = moveInterval
	moves := motion.NewChoreographer(mover, arm, dunker, cal.MotionPoses(), cal.Settle)

	m := session.New(cal, input, disp, moves, clk)
	m.SetPoll(opts.poll)

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if opts.configPath != "" {
		reloads, err := config.Watch(watchCtx, opts.configPath)
		if err != nil {
			log.Printf("config: hot reload disabled: %v", err)
		} else {
			m.SetReload(reloads)
		}
	}

	if err := m.Startup(); err != nil {
		return err
	}

	log.Printf("started: select=%d start=%d segments=%v servo=%s arm=%d dunker=%d",
		opts.pinSelect, opts.pinStart, opts.segments, opts.servoPort, opts.armChannel, opts.dunkerChannel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(m, sigCh)
}

// attachServos applies the calibrated pulse range and attaches the arm and
// dunker channels.
func attachServos(ctrl *servo.Controller, cal config.Calibration, armChannel, dunkerChannel int) (arm, dunker *servo.Channel, err error) {
	if err := ctrl.SetPulseRange(cal.MinPulseUs, cal.MaxPulseUs); err != nil {
		return nil, nil, fmt.Errorf("servo pulse range: %w", err)
	}
	arm = ctrl.NewChannel()
	if err := arm.Attach(armChannel); err != nil {
		return nil, nil, fmt.Errorf("attach arm: %w", err)
	}
	dunker = ctrl.NewChannel()
	if err := dunker.Attach(dunkerChannel); err != nil {
		return nil, nil, fmt.Errorf("attach dunker: %w", err)
	}
	return arm, dunker, nil
}

// machine is the part of session.Machine the run loop drives.
type machine interface {
	Run(ctx context.Context) error
	Shutdown()
}

// runLoop runs m until a signal arrives, then parks the mechanism.
// A dip sequence in progress completes before shutdown.
func runLoop(m machine, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			cancel()
		case <-ctx.Done():
		}
	}()

	err := m.Run(ctx)
	m.Shutdown()
	log.Printf("parked")
	return err
}

func printState(w io.Writer, buttons gpio.Reader, arm, dunker servo.Actuator) error {
	sel, start, err := buttons.Read()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	armAngle, err := arm.Read()
	if err != nil {
		return fmt.Errorf("read arm: %w", err)
	}
	dunkerAngle, err := dunker.Read()
	if err != nil {
		return fmt.Errorf("read dunker: %w", err)
	}
	fmt.Fprintln(w, formatState(sel, start, armAngle, dunkerAngle))
	return nil
}

func formatState(sel, start bool, arm, dunker int) string {
	return fmt.Sprintf("SELECT: %s, START: %s, ARM: %d, DUNKER: %d",
		pressedString(sel), pressedString(start), arm, dunker)
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}

// parsePins parses a comma-separated list of exactly display.SegmentCount
// distinct, non-negative pin numbers.
func parsePins(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	if len(fields) != display.SegmentCount {
		return nil, fmt.Errorf("need %d pins, got %d", display.SegmentCount, len(fields))
	}

	pins := make([]int, 0, len(fields))
	seen := make(map[int]bool, len(fields))
	for _, f := range fields {
		p, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("pin %q: %w", f, err)
		}
		if p < 0 {
			return nil, fmt.Errorf("pin %d: negative", p)
		}
		if seen[p] {
			return nil, fmt.Errorf("pin %d: listed twice", p)
		}
		seen[p] = true
		pins = append(pins, p)
	}
	return pins, nil
}

func formatPins(pins []int) string {
	parts := make([]string, len(pins))
	for i, p := range pins {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}
