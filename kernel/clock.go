package kernel

import "sync/atomic"

// Instant is a point on the free-running 32-bit cycle counter.
//
// The counter wraps; comparisons are only meaningful between instants less
// than 2^31 cycles apart.
type Instant uint32

// Cycles is a span of CPU cycles.
type Cycles uint32

// Add returns i advanced by c cycles.
func (i Instant) Add(c Cycles) Instant { return i + Instant(c) }

// Sub returns the number of cycles from j to i.
func (i Instant) Sub(j Instant) Cycles { return Cycles(i - j) }

// Before reports whether i is strictly earlier than j.
func (i Instant) Before(j Instant) bool { return int32(i-j) < 0 }

// After reports whether i is strictly later than j.
func (i Instant) After(j Instant) bool { return int32(i-j) > 0 }

// Reached reports whether the clock at now has reached or passed i.
func (i Instant) Reached(now Instant) bool { return int32(now-i) >= 0 }

// Clock is the monotonic cycle counter plus a one-shot wake alarm.
type Clock interface {
	Now() Instant
	// WakeAt arms the alarm for an absolute instant. A later call replaces
	// the previous alarm. The handler registered with OnWake is called once
	// Now() reaches at; it may be called from another goroutine.
	WakeAt(at Instant)
	OnWake(fn func())
}

// ManualClock is a Clock advanced explicitly by the caller.
type ManualClock struct {
	now   atomic.Uint32
	alarm atomic.Uint32
	armed atomic.Bool
	wake  atomic.Value // func()
	step  atomic.Uint32
}

// NewManualClock returns a clock starting at start.
func NewManualClock(start Instant) *ManualClock {
	c := &ManualClock{}
	c.now.Store(uint32(start))
	return c
}

func (c *ManualClock) Now() Instant {
	if d := c.step.Load(); d != 0 {
		return c.Advance(Cycles(d))
	}
	return Instant(c.now.Load())
}

// SetAutoAdvance makes every Now call move the clock by d cycles, so that
// busy waits terminate.
func (c *ManualClock) SetAutoAdvance(d Cycles) { c.step.Store(uint32(d)) }

func (c *ManualClock) WakeAt(at Instant) {
	c.alarm.Store(uint32(at))
	c.armed.Store(true)
}

func (c *ManualClock) OnWake(fn func()) { c.wake.Store(fn) }

// Advance moves the clock forward and fires the alarm if it became due.
func (c *ManualClock) Advance(d Cycles) Instant {
	now := Instant(c.now.Add(uint32(d)))
	if c.armed.Load() && Instant(c.alarm.Load()).Reached(now) {
		c.armed.Store(false)
		if fn, ok := c.wake.Load().(func()); ok && fn != nil {
			fn()
		}
	}
	return now
}

// Set jumps the clock to an absolute instant.
func (c *ManualClock) Set(at Instant) {
	c.Advance(at.Sub(Instant(c.now.Load())))
}
