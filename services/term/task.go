package term

import (
	"wiohid/kernel"
)

// PrintTask returns the task that appends queued segments to the terminal.
// A display failure halts the kernel.
func PrintTask(id kernel.TaskID, prio kernel.Priority, capacity int, res *kernel.Resource[Terminal]) kernel.TaskSpec {
	return kernel.TaskSpec{
		ID:        id,
		Name:      "print",
		Priority:  prio,
		Capacity:  capacity,
		Binds:     kernel.IRQNone,
		Resources: []kernel.ResourceID{res.ID()},
		Run: func(cx *kernel.Context, msg kernel.Message) {
			seg, ok := SegmentFrom(msg)
			if !ok {
				return
			}
			var err error
			res.Lock(cx, func(t *Terminal) {
				err = t.Write(cx, seg)
			})
			if err != nil {
				cx.Fault(err)
			}
		},
	}
}

// Print queues s, truncated to one segment, for the print task. It reports
// whether the segment was accepted.
func Print(cx *kernel.Context, id kernel.TaskID, s string) bool {
	return cx.Spawn(id, Segment(s).Message()) == kernel.SpawnOK
}
