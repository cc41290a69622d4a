// Package dispatch maps debounced button events to HID report changes and
// terminal text.
package dispatch

import (
	"wiohid/services/buttons"
	"wiohid/services/hid"
)

// Action is what one button transition does.
type Action struct {
	Mutation hid.Mutation
	Text     string
}

func (a Action) empty() bool { return a.Mutation.Op == hid.OpNone && a.Text == "" }

// Table is the static (button, transition) lookup.
type Table [buttons.Count][2]Action

// Set installs the action for a transition.
func (t *Table) Set(b buttons.Button, pressed bool, a Action) {
	t[b][index(pressed)] = a
}

// Lookup returns the action for ev. Unlisted transitions report false.
func (t *Table) Lookup(ev buttons.Event) (Action, bool) {
	if ev.Button >= buttons.Count {
		return Action{}, false
	}
	a := t[ev.Button][index(ev.Pressed)]
	return a, !a.empty()
}

func index(pressed bool) int {
	if pressed {
		return 1
	}
	return 0
}

// DefaultTable types 'a' on TopLeft and Right-arrow on Right. Every other
// button is ignored.
func DefaultTable() *Table {
	t := new(Table)
	t.Set(buttons.TopLeft, true, Action{Mutation: hid.KeyDown(hid.KeyA), Text: "TopLeft Down\n"})
	t.Set(buttons.TopLeft, false, Action{Mutation: hid.KeyUp(hid.KeyA), Text: "TopLeft Up\n"})
	t.Set(buttons.Right, true, Action{Mutation: hid.KeyDown(hid.KeyRightArrow), Text: "Right Down\n"})
	t.Set(buttons.Right, false, Action{Mutation: hid.KeyUp(hid.KeyRightArrow), Text: "Right Up\n"})
	return t
}
