// Package usb wires the USB controller interrupts to the HID poll task.
package usb

import (
	"wiohid/kernel"
	"wiohid/services/hid"
)

// Lines names the controller interrupt lines in binding order.
var Lines = [4]string{"usb_other", "usb_sof", "usb_trcpt0", "usb_trcpt1"}

// Wiring describes where the USB tasks sit in the task table.
type Wiring struct {
	Port *kernel.Resource[hid.Port]

	Poll         kernel.TaskID
	PollPriority kernel.Priority

	// LineTasks and IRQs are indexed like Lines.
	LineTasks    [4]kernel.TaskID
	IRQs         [4]kernel.IRQ
	LinePriority kernel.Priority
}

// Specs returns the poll task and one interrupt task per line. A line
// interrupt only spawns the poll task; a poll already queued absorbs it.
func (w *Wiring) Specs() []kernel.TaskSpec {
	specs := []kernel.TaskSpec{{
		ID:        w.Poll,
		Name:      "usb",
		Priority:  w.PollPriority,
		Capacity:  1,
		Binds:     kernel.IRQNone,
		Resources: []kernel.ResourceID{w.Port.ID()},
		Run: func(cx *kernel.Context, _ kernel.Message) {
			w.Port.Lock(cx, func(p *hid.Port) { p.Poll() })
		},
	}}
	for i, name := range Lines {
		specs = append(specs, kernel.TaskSpec{
			ID:       w.LineTasks[i],
			Name:     name,
			Priority: w.LinePriority,
			Binds:    w.IRQs[i],
			Run: func(cx *kernel.Context, _ kernel.Message) {
				cx.Spawn(w.Poll, kernel.Message{})
			},
		})
	}
	return specs
}
