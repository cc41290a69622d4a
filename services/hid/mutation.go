package hid

// Op selects the field a Mutation changes.
type Op uint8

const (
	OpNone Op = iota
	OpKeyDown
	OpKeyUp
	OpModifierDown
	OpModifierUp
	OpButtonDown
	OpButtonUp
	OpMove
	OpReleaseAll
)

func (o Op) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpKeyDown:
		return "key-down"
	case OpKeyUp:
		return "key-up"
	case OpModifierDown:
		return "modifier-down"
	case OpModifierUp:
		return "modifier-up"
	case OpButtonDown:
		return "button-down"
	case OpButtonUp:
		return "button-up"
	case OpMove:
		return "move"
	case OpReleaseAll:
		return "release-all"
	default:
		return "unknown"
	}
}

// Mutation is one change request applied to a Report.
type Mutation struct {
	Op   Op
	Code uint8 // keycode, modifier bits or pointer button bits
	DX   int8
	DY   int8
}

func KeyDown(key uint8) Mutation { return Mutation{Op: OpKeyDown, Code: key} }
func KeyUp(key uint8) Mutation { return Mutation{Op: OpKeyUp, Code: key} }
func ModifierDown(bits uint8) Mutation { return Mutation{Op: OpModifierDown, Code: bits} }
func ModifierUp(bits uint8) Mutation { return Mutation{Op: OpModifierUp, Code: bits} }
func ButtonDown(bits uint8) Mutation { return Mutation{Op: OpButtonDown, Code: bits} }
func ButtonUp(bits uint8) Mutation { return Mutation{Op: OpButtonUp, Code: bits} }
func Move(dx, dy int8) Mutation { return Mutation{Op: OpMove, DX: dx, DY: dy} }
func ReleaseAll() Mutation { return Mutation{Op: OpReleaseAll} }

// Apply returns the report that results from m.
//
// A key already held is not added twice. When all slots are in use a further
// key is dropped. Releasing a key clears only its own slot; the other slots
// keep their positions.
func Apply(r Report, m Mutation) Report {
	switch m.Op {
	case OpKeyDown:
		if m.Code == KeyNone || r.Pressed(m.Code) {
			return r
		}
		for i := range r.Keys {
			if r.Keys[i] == KeyNone {
				r.Keys[i] = m.Code
				break
			}
		}
	case OpKeyUp:
		for i := range r.Keys {
			if r.Keys[i] == m.Code {
				r.Keys[i] = KeyNone
			}
		}
	case OpModifierDown:
		r.Modifier |= m.Code
	case OpModifierUp:
		r.Modifier &^= m.Code
	case OpButtonDown:
		r.Buttons |= m.Code & buttonMask
	case OpButtonUp:
		r.Buttons &^= m.Code & buttonMask
	case OpMove:
		r.X, r.Y = m.DX, m.DY
	case OpReleaseAll:
		leds := r.LEDs
		r = Report{LEDs: leds}
	}
	return r
}
