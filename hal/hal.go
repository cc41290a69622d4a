package hal

import (
	"errors"
	"image/color"
	"time"

	"tinygo.org/x/drivers"

	"wiohid/kernel"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

// Backlight switches the panel backlight.
type Backlight interface {
	SetLevel(on bool)
}

var ErrNotImplemented = errors.New("not implemented")

// ButtonCount is the number of user buttons. Button indices follow the
// order Up, Left, Right, Down, Click, TopLeft, TopMiddle.
const ButtonCount = 7

// ButtonPin is a user button wired to an edge interrupt.
type ButtonPin interface {
	// Pressed reads the raw level; true while the switch is closed.
	Pressed() bool
	// SetInterrupt registers fn for both edges. fn runs in interrupt
	// context and must only pend work.
	SetInterrupt(fn func()) error
}

// Panel is the landscape display with hardware vertical scrolling.
type Panel interface {
	drivers.Displayer
	FillRectangle(x, y, width, height int16, c color.RGBA) error
	SetScroll(line int16)
}

// USBLine identifies one of the USB controller interrupt lines.
type USBLine uint8

const (
	USBOther USBLine = iota
	USBStartOfFrame
	USBTransferComplete0
	USBTransferComplete1

	USBLineCount
)

// USB is the HID interface of the USB device port.
type USB interface {
	// PushInput queues one input report.
	PushInput(report []byte) error
	// Poll services the device stack after an interrupt.
	Poll()
	SetInterrupt(line USBLine, fn func())
}

// Serial is the USB CDC or UART text port.
type Serial interface {
	Buffered() int
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
	// SetInterrupt registers fn for received data.
	SetInterrupt(fn func())
}

// Polled is implemented by HALs whose interrupt callbacks run in real
// interrupt context, where they may only set a flag. The kernel then checks
// for pending lines every PollInterval.
type Polled interface {
	PollInterval() time.Duration
}

// HAL provides the only contact point between the firmware and the outside world.
type HAL interface {
	Logger() Logger
	Clock() kernel.Clock
	LED() LED
	Backlight() Backlight
	Button(i int) ButtonPin
	Panel() Panel
	USB() USB
	Serial() Serial
}
