// Package backlight drives the panel backlight with a slow software PWM.
package backlight

import "wiohid/kernel"

const (
	// Period is the PWM period in brightness steps.
	Period = 120
	// Factor scales one step to cycles.
	Factor = 1024
	// Brightness is the number of steps the backlight is on.
	Brightness = 20

	On  kernel.Cycles = Brightness * Factor
	Off kernel.Cycles = (Period - Brightness) * Factor
)

// Pin is the backlight output.
type Pin interface {
	SetLevel(on bool)
}

// State is the backlight resource.
type State struct {
	Pin Pin
	On  bool
	// OnCycles and OffCycles override the default duty when non-zero.
	OnCycles  kernel.Cycles
	OffCycles kernel.Cycles
}

// Toggle flips the output and returns how long the new level lasts.
func (s *State) Toggle() kernel.Cycles {
	s.On = !s.On
	if s.Pin != nil {
		s.Pin.SetLevel(s.On)
	}
	if s.On {
		if s.OnCycles != 0 {
			return s.OnCycles
		}
		return On
	}
	if s.OffCycles != 0 {
		return s.OffCycles
	}
	return Off
}

// Spec returns the pwm task row. Each edge re-arms the next one relative
// to its own fire cycle.
func Spec(id kernel.TaskID, prio kernel.Priority, res *kernel.Resource[State]) kernel.TaskSpec {
	return kernel.TaskSpec{
		ID:        id,
		Name:      "pwm",
		Priority:  prio,
		Capacity:  1,
		Binds:     kernel.IRQNone,
		Resources: []kernel.ResourceID{res.ID()},
		Run: func(cx *kernel.Context, _ kernel.Message) {
			var next kernel.Cycles
			res.Lock(cx, func(s *State) { next = s.Toggle() })
			cx.Schedule(id, cx.Scheduled().Add(next), kernel.Message{})
		},
	}
}
