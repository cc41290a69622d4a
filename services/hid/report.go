// Package hid encodes the composite keyboard and pointer input report.
package hid

import "errors"

// ReportSize is the length of the wire report in bytes.
const ReportSize = 11

// MaxKeys is the number of concurrent keycode slots.
const MaxKeys = 6

var ErrShortBuffer = errors.New("hid: buffer shorter than report")

const (
	ledMask    = 0x1F
	buttonMask = 0x07
)

// Report is the composite keyboard and pointer state.
//
// Wire layout: modifier, leds, 6 keycodes, pointer buttons, x, y.
type Report struct {
	Modifier uint8
	LEDs     uint8
	Keys     [MaxKeys]uint8
	Buttons  uint8
	X        int8
	Y        int8
}

// MarshalTo writes the report to buf.
// Returns the number of bytes written, or 0 if buf is too small.
func (r *Report) MarshalTo(buf []byte) int {
	if len(buf) < ReportSize {
		return 0
	}
	buf[0] = r.Modifier
	buf[1] = r.LEDs
	copy(buf[2:8], r.Keys[:])
	buf[8] = r.Buttons
	buf[9] = byte(r.X)
	buf[10] = byte(r.Y)
	return ReportSize
}

// Bytes returns the encoded report by value.
func (r Report) Bytes() [ReportSize]byte {
	var b [ReportSize]byte
	r.MarshalTo(b[:])
	return b
}

// Unmarshal decodes a report from the first ReportSize bytes of buf.
func Unmarshal(buf []byte) (Report, error) {
	if len(buf) < ReportSize {
		return Report{}, ErrShortBuffer
	}
	var r Report
	r.Modifier = buf[0]
	r.LEDs = buf[1]
	copy(r.Keys[:], buf[2:8])
	r.Buttons = buf[8]
	r.X = int8(buf[9])
	r.Y = int8(buf[10])
	return r, nil
}

// Valid reports whether only the bits declared by the descriptor are set.
func (r Report) Valid() bool {
	return r.LEDs&^ledMask == 0 && r.Buttons&^buttonMask == 0
}

// Idle reports whether no key, modifier or pointer button is held and no
// motion is pending.
func (r Report) Idle() bool {
	return r.Modifier == 0 && r.Keys == [MaxKeys]uint8{} && r.Buttons == 0 && r.X == 0 && r.Y == 0
}

// Pressed reports whether key occupies a slot.
func (r Report) Pressed(key uint8) bool {
	if key == KeyNone {
		return false
	}
	for _, k := range r.Keys {
		if k == key {
			return true
		}
	}
	return false
}
