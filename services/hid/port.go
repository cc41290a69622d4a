package hid

import "errors"

// ErrBusy is returned by a Transport whose endpoint cannot take a report
// right now, for example before the host has configured the device. The
// report is dropped.
var ErrBusy = errors.New("hid: endpoint busy")

// Transport is the USB side of the HID interface.
type Transport interface {
	// PushInput queues one input report for the interrupt IN endpoint.
	PushInput(report []byte) error
	// Poll services the bus after a USB interrupt.
	Poll()
}

// Port is the shared handle to the transport. Sends are fire-and-forget.
type Port struct {
	transport Transport
	sent      uint32
	dropped   uint32
}

func NewPort(t Transport) Port {
	return Port{transport: t}
}

// Send encodes r into a private buffer and pushes it. ErrBusy is counted
// and swallowed; any other error is a transport fault.
func (p *Port) Send(r Report) error {
	if p.transport == nil {
		p.dropped++
		return nil
	}
	var buf [ReportSize]byte
	r.MarshalTo(buf[:])
	if err := p.transport.PushInput(buf[:]); err != nil {
		if errors.Is(err, ErrBusy) {
			p.dropped++
			return nil
		}
		return err
	}
	p.sent++
	return nil
}

// Poll services the bus.
func (p *Port) Poll() {
	if p.transport != nil {
		p.transport.Poll()
	}
}

func (p *Port) Sent() uint32    { return p.sent }
func (p *Port) Dropped() uint32 { return p.dropped }
