//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"wiohid/kernel"
)

// DefaultCPUHz is the core clock of the emulated board.
const DefaultCPUHz = 120_000_000

var buttonNames = [ButtonCount]string{"Up", "Left", "Right", "Down", "Click", "TopLeft", "TopMiddle"}

// HostConfig configures the emulated board.
type HostConfig struct {
	CPUHz uint32
	// LogPins logs every LED and backlight transition.
	LogPins bool
	Stdin   io.Reader
	Stdout  io.Writer
}

type hostHAL struct {
	logger    *hostLogger
	clock     *hostClock
	led       *levelPin
	backlight *levelPin
	buttons   [ButtonCount]*virtualButton
	panel     *hostPanel
	usb       *hostUSB
	serial    *hostSerial
}

// New returns a host HAL implementation with default settings.
func New() HAL {
	return NewHost(HostConfig{})
}

// NewHost returns a host HAL implementation.
func NewHost(cfg HostConfig) HAL {
	if cfg.CPUHz == 0 {
		cfg.CPUHz = DefaultCPUHz
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}

	logger := &hostLogger{w: cfg.Stdout}
	var onPin func(string, bool)
	if cfg.LogPins {
		onPin = func(name string, level bool) {
			logger.WriteLineString(fmt.Sprintf("%s: %v", name, level))
		}
	}

	h := &hostHAL{
		logger:    logger,
		clock:     newHostClock(cfg.CPUHz),
		led:       newLevelPin("led", onPin),
		backlight: newLevelPin("backlight", onPin),
		panel:     newHostPanel(320, 240),
		usb:       newHostUSB(logger),
		serial:    newHostSerial(cfg.Stdin, cfg.Stdout),
	}
	for i := range h.buttons {
		h.buttons[i] = newVirtualButton(buttonNames[i])
	}
	return h
}

func (h *hostHAL) Logger() Logger       { return h.logger }
func (h *hostHAL) Clock() kernel.Clock  { return h.clock }
func (h *hostHAL) LED() LED             { return h.led }
func (h *hostHAL) Backlight() Backlight { return h.backlight }
func (h *hostHAL) Panel() Panel         { return h.panel }
func (h *hostHAL) USB() USB             { return h.usb }
func (h *hostHAL) Serial() Serial       { return h.serial }

func (h *hostHAL) Button(i int) ButtonPin {
	if i < 0 || i >= ButtonCount {
		return nil
	}
	return h.buttons[i]
}

// Close stops the background sources of the emulated board.
func (h *hostHAL) Close() {
	h.clock.stop()
	h.usb.stop()
}

// HostStats summarizes the emulated peripherals.
type HostStats struct {
	Reports          uint64
	LastReport       []byte
	LEDToggles       uint64
	BacklightToggles uint64
}

// Stats returns peripheral counters of a host HAL, or false for any other HAL.
func Stats(h HAL) (HostStats, bool) {
	hh, ok := h.(*hostHAL)
	if !ok {
		return HostStats{}, false
	}
	n, last := hh.usb.stats()
	return HostStats{
		Reports:          n,
		LastReport:       last,
		LEDToggles:       hh.led.Changes(),
		BacklightToggles: hh.backlight.Changes(),
	}, true
}

// Press drives a host button: down or up, after n bounces.
func Press(h HAL, button int, down bool, bounces int) bool {
	hh, ok := h.(*hostHAL)
	if !ok || button < 0 || button >= ButtonCount {
		return false
	}
	hh.buttons[button].bounce(down, bounces)
	return true
}

// ButtonIndex returns the index of a button by name.
func ButtonIndex(name string) (int, bool) {
	for i, n := range buttonNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
