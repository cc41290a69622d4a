//go:build !tinygo

package hal

import (
	"encoding/hex"
	"sync"
	"time"
)

const frameInterval = time.Millisecond

// hostUSB stands in for the device controller. Reports are logged as hex
// and acknowledged with a transfer-complete interrupt; start-of-frame
// interrupts tick once per millisecond while a handler is registered.
type hostUSB struct {
	logger Logger

	mu      sync.Mutex
	irq     [USBLineCount]func()
	reports uint64
	last    []byte
	polls   uint64
	sof     *time.Ticker
	sofStop chan struct{}
}

func newHostUSB(logger Logger) *hostUSB {
	return &hostUSB{logger: logger}
}

func (u *hostUSB) PushInput(report []byte) error {
	u.mu.Lock()
	u.reports++
	u.last = append(u.last[:0], report...)
	irq := u.irq[USBTransferComplete1]
	u.mu.Unlock()

	if u.logger != nil {
		u.logger.WriteLineString("usb: report " + hex.EncodeToString(report))
	}
	if irq != nil {
		irq()
	}
	return nil
}

func (u *hostUSB) Poll() {
	u.mu.Lock()
	u.polls++
	u.mu.Unlock()
}

func (u *hostUSB) SetInterrupt(line USBLine, fn func()) {
	if line >= USBLineCount {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.irq[line] = fn
	if line == USBStartOfFrame && fn != nil && u.sof == nil {
		u.sof = time.NewTicker(frameInterval)
		u.sofStop = make(chan struct{})
		go u.frames(u.sof, u.sofStop)
	}
}

func (u *hostUSB) frames(t *time.Ticker, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-t.C:
			u.mu.Lock()
			irq := u.irq[USBStartOfFrame]
			u.mu.Unlock()
			if irq != nil {
				irq()
			}
		}
	}
}

func (u *hostUSB) stop() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.sof != nil {
		u.sof.Stop()
		close(u.sofStop)
		u.sof = nil
	}
}

func (u *hostUSB) stats() (uint64, []byte) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.reports, append([]byte(nil), u.last...)
}
