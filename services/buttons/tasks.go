package buttons

import (
	"context"
	"log/slog"

	"wiohid/internal/log"
	"wiohid/kernel"
)

const settleKind uint8 = 0xB1

// Pipeline wires the controller into the task table: one interrupt task per
// line and a shared settle task that emits events to Dispatch.
type Pipeline struct {
	Controller *kernel.Resource[Controller]

	// LineTasks and IRQs are indexed by Button.
	LineTasks [Count]kernel.TaskID
	IRQs      [Count]kernel.IRQ
	Settle    kernel.TaskID
	Dispatch  kernel.TaskID
	Priority  kernel.Priority

	Logger *slog.Logger
}

// Specs returns the task table rows of the pipeline.
func (p *Pipeline) Specs() []kernel.TaskSpec {
	p.Logger = log.For(p.Logger, log.ComponentButtons)
	res := []kernel.ResourceID{p.Controller.ID()}

	specs := make([]kernel.TaskSpec, 0, Count+1)
	for b := Button(0); b < Count; b++ {
		specs = append(specs, kernel.TaskSpec{
			ID:        p.LineTasks[b],
			Name:      "btn_" + b.String(),
			Priority:  p.Priority,
			Binds:     p.IRQs[b],
			Resources: res,
			Run:       p.edgeHandler(b),
		})
	}
	specs = append(specs, kernel.TaskSpec{
		ID:        p.Settle,
		Name:      "settle",
		Priority:  p.Priority,
		Capacity:  int(Count),
		Binds:     kernel.IRQNone,
		Resources: res,
		Run:       p.settle,
	})
	return specs
}

func (p *Pipeline) edgeHandler(b Button) kernel.Handler {
	return func(cx *kernel.Context, _ kernel.Message) {
		var (
			at  kernel.Instant
			arm bool
		)
		p.Controller.Lock(cx, func(c *Controller) {
			at, arm = c.Edge(b, cx.Scheduled())
		})
		if arm {
			p.arm(cx, b, at)
		}
	}
}

func (p *Pipeline) settle(cx *kernel.Context, msg kernel.Message) {
	if msg.Kind != settleKind || msg.Len < 1 {
		return
	}
	b := Button(msg.Data[0])

	var s Settlement
	p.Controller.Lock(cx, func(c *Controller) {
		s = c.Settle(b, cx.Now())
	})

	switch {
	case s.Rearm:
		p.arm(cx, b, s.At)
	case s.Emit:
		if p.Logger.Enabled(context.Background(), slog.LevelDebug) {
			p.Logger.Debug("button event", "event", s.Event.String())
		}
		cx.Spawn(p.Dispatch, s.Event.Message())
	}
}

func (p *Pipeline) arm(cx *kernel.Context, b Button, at kernel.Instant) {
	msg := kernel.MessageOf(settleKind, []byte{byte(b)})
	if cx.Schedule(p.Settle, at, msg) == kernel.SpawnOK {
		return
	}
	p.Controller.Lock(cx, func(c *Controller) { c.Disarm(b) })
}
