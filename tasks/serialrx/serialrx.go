// Package serialrx turns received serial bytes into terminal output.
package serialrx

import (
	"context"
	"log/slog"

	"wiohid/internal/log"
	"wiohid/kernel"
	"wiohid/services/term"
)

// Port is the receive side of the serial port.
type Port interface {
	Buffered() int
	ReadByte() (byte, error)
}

// Receiver drains the port on every receive interrupt.
type Receiver struct {
	Port   *kernel.Resource[Port]
	Print  kernel.TaskID
	Logger *slog.Logger

	dropped uint64
}

// Dropped returns the number of segments the print queue refused.
func (r *Receiver) Dropped() uint64 { return r.dropped }

// Spec returns the interrupt task row.
func (r *Receiver) Spec(id kernel.TaskID, prio kernel.Priority, irq kernel.IRQ) kernel.TaskSpec {
	r.Logger = log.For(r.Logger, log.ComponentTerm)
	return kernel.TaskSpec{
		ID:        id,
		Name:      "serial_rx",
		Priority:  prio,
		Binds:     irq,
		Resources: []kernel.ResourceID{r.Port.ID()},
		Run:       r.receive,
	}
}

func (r *Receiver) receive(cx *kernel.Context, _ kernel.Message) {
	for {
		var (
			buf [term.SegmentSize]byte
			n   int
		)
		r.Port.Lock(cx, func(p *Port) {
			for n < len(buf) && (*p).Buffered() > 0 {
				c, err := (*p).ReadByte()
				if err != nil {
					break
				}
				buf[n] = c
				n++
			}
		})
		if n == 0 {
			return
		}
		seg := term.SegmentBytes(buf[:n])
		if cx.Spawn(r.Print, seg.Message()) != kernel.SpawnOK {
			r.dropped++
			if r.Logger.Enabled(context.Background(), slog.LevelDebug) {
				r.Logger.Debug("serial text dropped", "bytes", n)
			}
		}
		if n < len(buf) {
			return
		}
	}
}
