package buttons

import (
	"testing"

	"wiohid/kernel"
)

type fakePin struct{ down bool }

func (p *fakePin) Pressed() bool { return p.down }

func newTestController(window kernel.Cycles) (*Controller, *fakePin) {
	pin := &fakePin{}
	var pins [Count]Pin
	pins[Up] = pin
	c := NewController(window, pins)
	return &c, pin
}

func TestSpacedEdgesEmitOneEventEach(t *testing.T) {
	const window = 100
	c, pin := newTestController(window)

	now := kernel.Instant(0xFFFF_FF00) // crosses the counter wrap
	for i := 0; i < 6; i++ {
		pin.down = !pin.down
		at, arm := c.Edge(Up, now)
		if !arm {
			t.Fatalf("edge %d: Edge() did not arm a settle check", i)
		}
		if at != now.Add(window) {
			t.Fatalf("edge %d: settle at %d, want %d", i, at, now.Add(window))
		}

		s := c.Settle(Up, at)
		if !s.Emit || s.Rearm {
			t.Fatalf("edge %d: Settle() = %+v, want an event", i, s)
		}
		want := Event{Button: Up, Pressed: i%2 == 0}
		if s.Event != want {
			t.Fatalf("edge %d: event = %v, want %v", i, s.Event, want)
		}
		now = now.Add(window + 50)
	}
}

func TestBouncingEdgesCoalesce(t *testing.T) {
	const window = 100
	c, pin := newTestController(window)

	at, _ := c.Edge(Up, 0)
	for _, ts := range []kernel.Instant{30, 60, 90} {
		pin.down = !pin.down
		if _, arm := c.Edge(Up, ts); arm {
			t.Fatalf("Edge(%d) armed a second check", ts)
		}
	}
	pin.down = true

	s := c.Settle(Up, at)
	if s.Emit || !s.Rearm || s.At != 190 {
		t.Fatalf("Settle(%d) = %+v, want rearm at 190", at, s)
	}
	if got := c.Line(Up).State; got != Bouncing {
		t.Fatalf("state = %s, want %s", got, Bouncing)
	}

	s = c.Settle(Up, 190)
	if !s.Emit || s.Event != (Event{Button: Up, Pressed: true}) {
		t.Fatalf("Settle(190) = %+v, want Up down", s)
	}
	if got := c.Line(Up).State; got != SettledPressed {
		t.Fatalf("state = %s, want %s", got, SettledPressed)
	}
}

func TestBounceBackToSameLevelIsSilent(t *testing.T) {
	c, pin := newTestController(50)

	pin.down = true
	at, _ := c.Edge(Up, 0)
	pin.down = false
	c.Edge(Up, 10)

	s := c.Settle(Up, at)
	if s.Rearm {
		s = c.Settle(Up, s.At)
	}
	if s.Emit {
		t.Fatalf("Settle() emitted %v for a glitch", s.Event)
	}
	if got := c.Line(Up).State; got != SettledReleased {
		t.Fatalf("state = %s, want %s", got, SettledReleased)
	}

	// A later real press still arms and emits.
	pin.down = true
	at, arm := c.Edge(Up, 500)
	if !arm {
		t.Fatal("Edge() after settling did not arm")
	}
	if s := c.Settle(Up, at); !s.Emit || !s.Event.Pressed {
		t.Fatalf("Settle() = %+v, want press", s)
	}
}

func TestEventMessageRoundTrip(t *testing.T) {
	for b := Button(0); b < Count; b++ {
		for _, pressed := range []bool{false, true} {
			want := Event{Button: b, Pressed: pressed}
			got, ok := EventFrom(want.Message())
			if !ok || got != want {
				t.Fatalf("EventFrom(%v.Message()) = %v, %v", want, got, ok)
			}
		}
	}
	if _, ok := EventFrom(kernel.MessageOf(0, []byte{0, 1})); ok {
		t.Fatal("EventFrom() accepted a foreign message kind")
	}
}
