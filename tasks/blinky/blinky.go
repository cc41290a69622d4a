// Package blinky toggles the user LED at a fixed cycle period.
package blinky

import "wiohid/kernel"

// Period is the cycle distance between two toggles.
const Period kernel.Cycles = 16_000_000

// LED is the output driven by the task.
type LED interface {
	High()
	Low()
}

// State is the user_led resource.
type State struct {
	LED LED
	On  bool
}

// Toggle flips the LED and returns the new level.
func (s *State) Toggle() bool {
	s.On = !s.On
	if s.LED != nil {
		if s.On {
			s.LED.High()
		} else {
			s.LED.Low()
		}
	}
	return s.On
}

// Spec returns the task row. Each activation toggles the LED and re-arms
// itself one period after its own fire cycle, so the cadence does not
// drift with handler latency.
func Spec(id kernel.TaskID, prio kernel.Priority, res *kernel.Resource[State], period kernel.Cycles) kernel.TaskSpec {
	if period == 0 {
		period = Period
	}
	return kernel.TaskSpec{
		ID:        id,
		Name:      "blinky",
		Priority:  prio,
		Capacity:  1,
		Binds:     kernel.IRQNone,
		Resources: []kernel.ResourceID{res.ID()},
		Run: func(cx *kernel.Context, _ kernel.Message) {
			res.Lock(cx, func(s *State) { s.Toggle() })
			cx.Schedule(id, cx.Scheduled().Add(period), kernel.Message{})
		},
	}
}
