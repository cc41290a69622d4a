package buttons

import "wiohid/kernel"

// State is the debounce state of one line.
type State uint8

const (
	Idle State = iota
	Bouncing
	SettledPressed
	SettledReleased
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Bouncing:
		return "bouncing"
	case SettledPressed:
		return "settled-pressed"
	case SettledReleased:
		return "settled-released"
	default:
		return "unknown"
	}
}

// Pin reads the raw level of a button. Pressed is true while the switch is
// closed, whatever the electrical polarity.
type Pin interface {
	Pressed() bool
}

// Line is the debounce state of one button.
type Line struct {
	Button  Button
	State   State
	Last    kernel.Instant
	pressed bool // last settled level
	armed   bool // a settle check is outstanding
	pin     Pin
}

// Controller owns every Line. Each line is only touched from its own
// interrupt task and the settle task, both under the controller's lock.
type Controller struct {
	window kernel.Cycles
	lines  [Count]Line
}

// NewController returns a controller with every line Idle and released.
// Lines without a pin read as released.
func NewController(window kernel.Cycles, pins [Count]Pin) Controller {
	c := Controller{window: window}
	for b := range c.lines {
		c.lines[b] = Line{Button: Button(b), pin: pins[b]}
	}
	return c
}

// Window returns the settle window.
func (c *Controller) Window() kernel.Cycles { return c.window }

// Line returns a copy of the state of b.
func (c *Controller) Line(b Button) Line { return c.lines[b] }

// Edge records a raw edge on b at now. When it returns arm, the caller must
// run Settle for b no earlier than at.
func (c *Controller) Edge(b Button, now kernel.Instant) (at kernel.Instant, arm bool) {
	if b >= Count {
		return 0, false
	}
	l := &c.lines[b]
	l.State = Bouncing
	l.Last = now
	if l.armed {
		return 0, false
	}
	l.armed = true
	return now.Add(c.window), true
}

// Disarm forgets the outstanding settle check of b, for when it could not
// be scheduled. The next edge arms a new one.
func (c *Controller) Disarm(b Button) {
	if b < Count {
		c.lines[b].armed = false
	}
}

// Settlement is the outcome of a settle check.
type Settlement struct {
	Event Event
	Emit  bool
	// Rearm asks for another check at At because an edge arrived inside
	// the window.
	Rearm bool
	At    kernel.Instant
}

// Settle completes debouncing of b once the line has been quiet for the
// settle window. An event is emitted only when the stable level differs
// from the previously settled one.
func (c *Controller) Settle(b Button, now kernel.Instant) Settlement {
	if b >= Count {
		return Settlement{}
	}
	l := &c.lines[b]
	if l.State != Bouncing {
		l.armed = false
		return Settlement{}
	}
	if due := l.Last.Add(c.window); !due.Reached(now) {
		return Settlement{Rearm: true, At: due}
	}

	l.armed = false
	level := l.pin != nil && l.pin.Pressed()
	if level {
		l.State = SettledPressed
	} else {
		l.State = SettledReleased
	}
	if level == l.pressed {
		return Settlement{}
	}
	l.pressed = level
	return Settlement{Event: Event{Button: b, Pressed: level}, Emit: true}
}
