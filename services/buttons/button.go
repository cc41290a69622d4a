// Package buttons turns raw edge interrupts from the user buttons into
// debounced press and release events.
package buttons

import (
	"fmt"

	"wiohid/kernel"
)

// Button identifies a physical button.
type Button uint8

const (
	Up Button = iota
	Left
	Right
	Down
	Click
	TopLeft
	TopMiddle

	Count
)

var names = [Count]string{"Up", "Left", "Right", "Down", "Click", "TopLeft", "TopMiddle"}

func (b Button) String() string {
	if b < Count {
		return names[b]
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// ExtInt is the external interrupt line each button is wired to.
var ExtInt = [Count]uint8{
	Up:        3,
	Left:      4,
	Right:     5,
	Down:      7,
	Click:     10,
	TopLeft:   11,
	TopMiddle: 12,
}

// Event is one debounced transition.
type Event struct {
	Button  Button
	Pressed bool
}

func (e Event) String() string {
	if e.Pressed {
		return e.Button.String() + " down"
	}
	return e.Button.String() + " up"
}

// MessageKind tags activations that carry an Event.
const MessageKind uint8 = 0xB0

// Message encodes e as a task payload.
func (e Event) Message() kernel.Message {
	var m kernel.Message
	m.Kind = MessageKind
	m.Len = 2
	m.Data[0] = byte(e.Button)
	if e.Pressed {
		m.Data[1] = 1
	}
	return m
}

// EventFrom decodes a payload built by Event.Message.
func EventFrom(m kernel.Message) (Event, bool) {
	if m.Kind != MessageKind || m.Len < 2 || Button(m.Data[0]) >= Count {
		return Event{}, false
	}
	return Event{Button: Button(m.Data[0]), Pressed: m.Data[1] != 0}, true
}
