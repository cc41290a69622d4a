//go:build !tinygo

package hal

import (
	"sync"
	"time"

	"wiohid/kernel"
)

// hostClock derives a free-running cycle counter from wall time.
type hostClock struct {
	hz    uint64
	start time.Time

	mu    sync.Mutex
	timer *time.Timer
	fn    func()
}

func newHostClock(hz uint32) *hostClock {
	return &hostClock{hz: uint64(hz), start: time.Now()}
}

func (c *hostClock) Now() kernel.Instant {
	d := time.Since(c.start)
	sec := uint64(d / time.Second)
	rem := uint64(d % time.Second)
	return kernel.Instant(sec*c.hz + rem*c.hz/uint64(time.Second))
}

func (c *hostClock) OnWake(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fn = fn
}

func (c *hostClock) WakeAt(at kernel.Instant) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	fn := c.fn
	if fn == nil {
		return
	}
	now := c.Now()
	if at.Reached(now) {
		go fn()
		return
	}
	c.timer = time.AfterFunc(c.duration(at.Sub(now)), fn)
}

func (c *hostClock) duration(cy kernel.Cycles) time.Duration {
	return time.Duration(uint64(cy) * uint64(time.Second) / c.hz)
}

func (c *hostClock) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
}
