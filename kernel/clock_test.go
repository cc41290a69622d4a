package kernel

import "testing"

func TestInstantWraps(t *testing.T) {
	near := Instant(0xFFFF_FFF0)
	later := near.Add(0x20)

	if later != 0x10 {
		t.Fatalf("Add() = %#x, want 0x10", uint32(later))
	}
	if !near.Before(later) {
		t.Fatalf("%#x.Before(%#x) = false, want true", uint32(near), uint32(later))
	}
	if !later.After(near) {
		t.Fatalf("%#x.After(%#x) = false, want true", uint32(later), uint32(near))
	}
	if got := later.Sub(near); got != 0x20 {
		t.Fatalf("Sub() = %d, want 32", got)
	}
	if later.Reached(near) {
		t.Fatal("future instant reported as reached")
	}
	if !near.Reached(near) {
		t.Fatal("instant not reached at itself")
	}
}

func TestManualClockFiresAlarmOnce(t *testing.T) {
	c := NewManualClock(10)
	fired := 0
	c.OnWake(func() { fired++ })

	c.WakeAt(20)
	c.Advance(5)
	if fired != 0 {
		t.Fatalf("alarm fired early at %d", c.Now())
	}
	c.Set(25)
	c.Advance(5)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}

func TestManualClockAutoAdvance(t *testing.T) {
	c := NewManualClock(0)
	c.SetAutoAdvance(3)
	if got := c.Now(); got != 3 {
		t.Fatalf("Now() = %d, want 3", got)
	}
	if got := c.Now(); got != 6 {
		t.Fatalf("Now() = %d, want 6", got)
	}
}
