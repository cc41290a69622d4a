package dispatch

import (
	"context"
	"log/slog"

	"wiohid/internal/log"
	"wiohid/kernel"
	"wiohid/services/buttons"
	"wiohid/services/hid"
	"wiohid/services/term"
)

// Dispatcher consumes one button event per activation.
type Dispatcher struct {
	Table  *Table
	Report *kernel.Resource[hid.Report]
	Port   *kernel.Resource[hid.Port]
	// Print is the task receiving display text.
	Print  kernel.TaskID
	Logger *slog.Logger
}

// Spec returns the task table row of the dispatcher.
func (d *Dispatcher) Spec(id kernel.TaskID, prio kernel.Priority, capacity int) kernel.TaskSpec {
	d.Logger = log.For(d.Logger, log.ComponentDispatch)
	if d.Table == nil {
		d.Table = DefaultTable()
	}
	return kernel.TaskSpec{
		ID:        id,
		Name:      "button",
		Priority:  prio,
		Capacity:  capacity,
		Binds:     kernel.IRQNone,
		Resources: []kernel.ResourceID{d.Report.ID(), d.Port.ID()},
		Run:       d.handle,
	}
}

func (d *Dispatcher) handle(cx *kernel.Context, msg kernel.Message) {
	ev, ok := buttons.EventFrom(msg)
	if !ok {
		return
	}
	a, ok := d.Table.Lookup(ev)
	if !ok {
		return
	}

	if a.Mutation.Op != hid.OpNone {
		var snapshot hid.Report
		d.Report.Lock(cx, func(r *hid.Report) {
			*r = hid.Apply(*r, a.Mutation)
			snapshot = *r
			// Motion is relative: it is reported once.
			r.X, r.Y = 0, 0
		})

		var err error
		d.Port.Lock(cx, func(p *hid.Port) {
			err = p.Send(snapshot)
		})
		if err != nil {
			cx.Fault(err)
		}
	}

	if a.Text != "" && !term.Print(cx, d.Print, a.Text) {
		if d.Logger.Enabled(context.Background(), slog.LevelDebug) {
			d.Logger.Debug("display text dropped", "event", ev.String())
		}
	}
}
