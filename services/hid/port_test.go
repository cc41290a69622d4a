package hid

import (
	"errors"
	"testing"
)

type fakeTransport struct {
	reports [][]byte
	err     error
	polls   int
}

func (t *fakeTransport) PushInput(report []byte) error {
	if t.err != nil {
		return t.err
	}
	t.reports = append(t.reports, append([]byte(nil), report...))
	return nil
}

func (t *fakeTransport) Poll() { t.polls++ }

func TestPortSendCopiesReport(t *testing.T) {
	tr := &fakeTransport{}
	p := NewPort(tr)

	r := Apply(Report{}, KeyDown(KeyA))
	if err := p.Send(r); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	r = Apply(r, KeyUp(KeyA))
	if err := p.Send(r); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(tr.reports) != 2 || tr.reports[0][2] != KeyA || tr.reports[1][2] != KeyNone {
		t.Fatalf("reports = % x", tr.reports)
	}
	if p.Sent() != 2 {
		t.Fatalf("Sent() = %d, want 2", p.Sent())
	}
}

func TestPortBusyIsDropped(t *testing.T) {
	tr := &fakeTransport{err: ErrBusy}
	p := NewPort(tr)
	if err := p.Send(Report{}); err != nil {
		t.Fatalf("Send() error = %v, want nil", err)
	}
	if p.Dropped() != 1 {
		t.Fatalf("Dropped() = %d, want 1", p.Dropped())
	}

	errStall := errors.New("endpoint stalled")
	tr.err = errStall
	if err := p.Send(Report{}); !errors.Is(err, errStall) {
		t.Fatalf("Send() error = %v, want %v", err, errStall)
	}

	p.Poll()
	if tr.polls != 1 {
		t.Fatalf("polls = %d, want 1", tr.polls)
	}
}
