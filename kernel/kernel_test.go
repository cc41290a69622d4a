package kernel

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

const (
	taskLow TaskID = iota
	taskMid
	taskHigh
	taskTimer
)

const (
	irqMid  IRQ = 1
	irqHigh IRQ = 2
)

const resShared ResourceID = 0

func nop(*Context, Message) {}

func mustNew(t *testing.T, cfg Config) *Kernel {
	t.Helper()
	k, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

func TestNewRejectsInconsistentTables(t *testing.T) {
	clk := NewManualClock(0)
	res := NewResource(resShared, "shared", 0)

	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"no clock", Config{}, ErrNoClock},
		{"zero priority", Config{Clock: clk, Tasks: []TaskSpec{
			{ID: 0, Name: "a", Capacity: 1, Binds: IRQNone, Run: nop},
		}}, ErrPriority},
		{"priority too high", Config{Clock: clk, Tasks: []TaskSpec{
			{ID: 0, Name: "a", Priority: MaxPriority + 1, Capacity: 1, Binds: IRQNone, Run: nop},
		}}, ErrPriority},
		{"duplicate id", Config{Clock: clk, Tasks: []TaskSpec{
			{ID: 0, Name: "a", Priority: 1, Capacity: 1, Binds: IRQNone, Run: nop},
			{ID: 0, Name: "b", Priority: 1, Capacity: 1, Binds: IRQNone, Run: nop},
		}}, ErrDuplicateTask},
		{"duplicate irq", Config{Clock: clk, Tasks: []TaskSpec{
			{ID: 0, Name: "a", Priority: 2, Binds: 3, Run: nop},
			{ID: 1, Name: "b", Priority: 2, Binds: 3, Run: nop},
		}}, ErrDuplicateIRQ},
		{"unknown irq", Config{Clock: clk, Tasks: []TaskSpec{
			{ID: 0, Name: "a", Priority: 2, Binds: maxIRQs, Run: nop},
		}}, ErrUnknownIRQ},
		{"zero capacity", Config{Clock: clk, Tasks: []TaskSpec{
			{ID: 0, Name: "a", Priority: 1, Binds: IRQNone, Run: nop},
		}}, ErrCapacity},
		{"no handler", Config{Clock: clk, Tasks: []TaskSpec{
			{ID: 0, Name: "a", Priority: 1, Capacity: 1, Binds: IRQNone},
		}}, ErrNoHandler},
		{"unknown resource", Config{Clock: clk, Tasks: []TaskSpec{
			{ID: 0, Name: "a", Priority: 1, Capacity: 1, Binds: IRQNone, Run: nop, Resources: []ResourceID{5}},
		}}, ErrUnknownResource},
		{"duplicate resource", Config{Clock: clk, Resources: []Shared{res, NewResource(resShared, "again", 1)}}, ErrDuplicateResource},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg)
			if !errors.Is(err, tc.want) {
				t.Fatalf("New() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCeilingIsHighestUserPriority(t *testing.T) {
	res := NewResource(resShared, "shared", 0)
	k := mustNew(t, Config{
		Clock:     NewManualClock(0),
		Resources: []Shared{res},
		Tasks: []TaskSpec{
			{ID: taskLow, Name: "low", Priority: 1, Capacity: 1, Binds: IRQNone, Resources: []ResourceID{resShared}, Run: nop},
			{ID: taskMid, Name: "mid", Priority: 3, Binds: irqMid, Resources: []ResourceID{resShared}, Run: nop},
			{ID: taskHigh, Name: "high", Priority: 5, Binds: irqHigh, Run: nop},
		},
	})

	if got := res.Ceiling(); got != 3 {
		t.Fatalf("Ceiling() = %d, want 3", got)
	}
	if got, ok := k.Ceiling(resShared); !ok || got != 3 {
		t.Fatalf("Kernel.Ceiling() = %d, %v, want 3, true", got, ok)
	}
}

func TestSpawnPreemptsOnlyForHigherPriority(t *testing.T) {
	var trace []string
	k := mustNew(t, Config{
		Clock: NewManualClock(0),
		Tasks: []TaskSpec{
			{ID: taskLow, Name: "low", Priority: 1, Capacity: 1, Binds: IRQNone, Run: func(cx *Context, _ Message) {
				trace = append(trace, "low")
			}},
			{ID: taskMid, Name: "mid", Priority: 2, Capacity: 1, Binds: IRQNone, Run: func(cx *Context, _ Message) {
				trace = append(trace, "mid-start")
				cx.Spawn(taskLow, Message{})
				cx.Spawn(taskHigh, Message{})
				trace = append(trace, "mid-end")
			}},
			{ID: taskHigh, Name: "high", Priority: 3, Capacity: 1, Binds: IRQNone, Run: func(cx *Context, _ Message) {
				trace = append(trace, "high")
			}},
		},
	})

	if err := k.Start(func(cx *Context) {
		if res := cx.Spawn(taskMid, Message{}); res != SpawnOK {
			t.Fatalf("Spawn() = %s, want ok", res)
		}
		trace = append(trace, "init-end")
	}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := k.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	want := []string{"init-end", "mid-start", "high", "mid-end", "low"}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
}

func TestSpawnQueueFullDropsAndCounts(t *testing.T) {
	var got []byte
	k := mustNew(t, Config{
		Clock: NewManualClock(0),
		Tasks: []TaskSpec{
			{ID: taskLow, Name: "low", Priority: 1, Capacity: 2, Binds: IRQNone, Run: func(cx *Context, msg Message) {
				got = append(got, msg.Payload()...)
			}},
		},
	})

	var results []SpawnResult
	if err := k.Start(func(cx *Context) {
		for _, b := range []byte("abc") {
			results = append(results, cx.Spawn(taskLow, MessageOf(0, []byte{b})))
		}
	}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := k.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	wantRes := []SpawnResult{SpawnOK, SpawnOK, SpawnQueueFull}
	if !reflect.DeepEqual(results, wantRes) {
		t.Fatalf("results = %v, want %v", results, wantRes)
	}
	if string(got) != "ab" {
		t.Fatalf("payloads = %q, want %q", got, "ab")
	}
	if n := k.Dropped(taskLow); n != 1 {
		t.Fatalf("Dropped() = %d, want 1", n)
	}
}

func TestSpawnRejectsBoundAndUnknownTasks(t *testing.T) {
	k := mustNew(t, Config{
		Clock: NewManualClock(0),
		Tasks: []TaskSpec{
			{ID: taskMid, Name: "mid", Priority: 3, Binds: irqMid, Run: nop},
		},
	})
	_ = k.Start(func(cx *Context) {
		if res := cx.Spawn(taskMid, Message{}); res != SpawnBoundTask {
			t.Fatalf("Spawn(bound) = %s, want %s", res, SpawnBoundTask)
		}
		if res := cx.Spawn(20, Message{}); res != SpawnUnknownTask {
			t.Fatalf("Spawn(unknown) = %s, want %s", res, SpawnUnknownTask)
		}
	})
}

func TestScheduleFiresAtFireCycleAndRearmsFromIt(t *testing.T) {
	const period Cycles = 100
	clk := NewManualClock(0)

	var scheduled, ran []Instant
	k := mustNew(t, Config{
		Clock: clk,
		Tasks: []TaskSpec{
			{ID: taskTimer, Name: "timer", Priority: 1, Capacity: 1, Binds: IRQNone, Run: func(cx *Context, _ Message) {
				scheduled = append(scheduled, cx.Scheduled())
				ran = append(ran, cx.Now())
				cx.Schedule(taskTimer, cx.Scheduled().Add(period), Message{})
			}},
		},
	})

	if err := k.Start(func(cx *Context) {
		cx.Schedule(taskTimer, cx.Scheduled().Add(period), Message{})
	}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	step := func() {
		t.Helper()
		if err := k.Step(); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}

	clk.Advance(99)
	step()
	if len(ran) != 0 {
		t.Fatalf("task ran at %v, before its fire cycle", ran)
	}

	clk.Advance(1)
	step()
	clk.Advance(150)
	step()
	clk.Advance(50)
	step()

	wantScheduled := []Instant{100, 200, 300}
	if !reflect.DeepEqual(scheduled, wantScheduled) {
		t.Fatalf("scheduled = %v, want %v", scheduled, wantScheduled)
	}
	for i := range ran {
		if ran[i].Before(scheduled[i]) {
			t.Fatalf("activation %d ran at %d, before %d", i, ran[i], scheduled[i])
		}
	}
}

func TestScheduleWakesClock(t *testing.T) {
	clk := NewManualClock(0)
	k := mustNew(t, Config{
		Clock: clk,
		Tasks: []TaskSpec{
			{ID: taskTimer, Name: "timer", Priority: 1, Capacity: 1, Binds: IRQNone, Run: nop},
		},
	})
	_ = k.Start(func(cx *Context) {
		cx.Schedule(taskTimer, 40, Message{})
	})

	clk.Advance(40)
	select {
	case <-k.wake:
	default:
		t.Fatal("alarm did not wake the kernel")
	}
}

func TestScheduleSameCycleKeepsInsertionOrder(t *testing.T) {
	clk := NewManualClock(0)
	var got []byte
	k := mustNew(t, Config{
		Clock: clk,
		Tasks: []TaskSpec{
			{ID: taskLow, Name: "low", Priority: 1, Capacity: 4, Binds: IRQNone, Run: func(cx *Context, msg Message) {
				got = append(got, msg.Payload()...)
			}},
		},
	})
	_ = k.Start(func(cx *Context) {
		cx.Schedule(taskLow, 10, MessageOf(0, []byte("b")))
		cx.Schedule(taskLow, 5, MessageOf(0, []byte("a")))
		cx.Schedule(taskLow, 10, MessageOf(0, []byte("c")))
		cx.Schedule(taskLow, 10, MessageOf(0, []byte("d")))
		if res := cx.Schedule(taskLow, 10, MessageOf(0, []byte("e"))); res != SpawnQueueFull {
			t.Fatalf("Schedule() = %s, want %s", res, SpawnQueueFull)
		}
	})

	clk.Advance(10)
	if err := k.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if string(got) != "abcd" {
		t.Fatalf("order = %q, want %q", got, "abcd")
	}
}

func TestCriticalSectionHoldsOffCeilingTasks(t *testing.T) {
	clk := NewManualClock(0)
	clk.SetAutoAdvance(1)

	var trace []string
	res := NewResource(resShared, "shared", 0)

	var k *Kernel
	k = mustNew(t, Config{
		Clock:     clk,
		Resources: []Shared{res},
		Tasks: []TaskSpec{
			{ID: taskLow, Name: "low", Priority: 1, Capacity: 1, Binds: IRQNone, Resources: []ResourceID{resShared},
				Run: func(cx *Context, _ Message) {
					res.Lock(cx, func(v *int) {
						trace = append(trace, "low-enter")
						k.Pend(irqMid)
						k.Pend(irqHigh)
						cx.Delay(10)
						*v++
						trace = append(trace, "low-exit")
					})
					trace = append(trace, "low-released")
				}},
			{ID: taskMid, Name: "mid", Priority: 3, Binds: irqMid, Resources: []ResourceID{resShared},
				Run: func(cx *Context, _ Message) {
					res.Lock(cx, func(v *int) {
						*v++
						trace = append(trace, "mid")
					})
				}},
			{ID: taskHigh, Name: "high", Priority: 5, Binds: irqHigh,
				Run: func(cx *Context, _ Message) {
					trace = append(trace, "high")
				}},
		},
	})

	_ = k.Start(func(cx *Context) { cx.Spawn(taskLow, Message{}) })
	if err := k.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	want := []string{"low-enter", "high", "low-exit", "mid", "low-released"}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
}

func TestMaskedInterruptStaysPending(t *testing.T) {
	runs := 0
	k := mustNew(t, Config{
		Clock: NewManualClock(0),
		Tasks: []TaskSpec{
			{ID: taskMid, Name: "mid", Priority: 3, Binds: irqMid, Run: func(*Context, Message) { runs++ }},
		},
	})
	_ = k.Start(nil)

	k.Mask(irqMid)
	if !k.Pend(irqMid) {
		t.Fatal("Pend() = false, want true")
	}
	_ = k.Step()
	if runs != 0 {
		t.Fatalf("masked task ran %d times", runs)
	}
	if !k.IsPending(irqMid) {
		t.Fatal("IsPending() = false, want true")
	}

	k.Unmask(irqMid)
	_ = k.Step()
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
	if k.IsPending(irqMid) {
		t.Fatal("pending flag not cleared on dispatch")
	}

	k.Pend(irqMid)
	k.Pend(irqMid)
	_ = k.Step()
	if runs != 2 {
		t.Fatalf("runs = %d, want 2 (repeated pend coalesces)", runs)
	}

	k.Pend(irqMid)
	k.ClearPending(irqMid)
	_ = k.Step()
	if runs != 2 {
		t.Fatalf("runs = %d after ClearPending, want 2", runs)
	}

	if k.Pend(irqHigh) {
		t.Fatal("Pend() of unbound irq = true, want false")
	}
}

func TestFaultHaltsKernelAndCallsHandlerOnce(t *testing.T) {
	errDriver := errors.New("spi transfer failed")
	var faults []FaultInfo

	k := mustNew(t, Config{
		Clock:   NewManualClock(0),
		OnFault: func(info FaultInfo) { faults = append(faults, info) },
		Tasks: []TaskSpec{
			{ID: taskLow, Name: "low", Priority: 1, Capacity: 1, Binds: IRQNone, Run: func(cx *Context, _ Message) {
				cx.Fault(errDriver)
			}},
		},
	})
	_ = k.Start(func(cx *Context) { cx.Spawn(taskLow, Message{}) })

	err := k.Step()
	var fe *FaultError
	if !errors.As(err, &fe) {
		t.Fatalf("Step() error = %v, want *FaultError", err)
	}
	if !errors.Is(err, errDriver) {
		t.Fatalf("Step() error = %v, want wrapping %v", err, errDriver)
	}
	if fe.Name != "low" {
		t.Fatalf("fault task = %q, want %q", fe.Name, "low")
	}
	if !k.Halted() {
		t.Fatal("Halted() = false, want true")
	}
	if err := k.Step(); err == nil {
		t.Fatal("Step() after fault = nil, want error")
	}
	if len(faults) != 1 {
		t.Fatalf("fault handler ran %d times, want 1", len(faults))
	}
}

func TestLockMisuseFaults(t *testing.T) {
	a := NewResource(0, "a", 0)
	b := NewResource(1, "b", 0)

	cases := []struct {
		name string
		run  Handler
		want error
	}{
		{"undeclared", func(cx *Context, _ Message) {
			b.Lock(cx, func(*int) {})
		}, ErrUndeclaredResource},
		{"nested", func(cx *Context, _ Message) {
			a.Lock(cx, func(*int) {
				a.Lock(cx, func(*int) {})
			})
		}, ErrNestedLock},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			k := mustNew(t, Config{
				Clock:     NewManualClock(0),
				Resources: []Shared{a, b},
				Tasks: []TaskSpec{
					{ID: taskLow, Name: "low", Priority: 1, Capacity: 1, Binds: IRQNone, Resources: []ResourceID{0}, Run: tc.run},
				},
			})
			_ = k.Start(func(cx *Context) { cx.Spawn(taskLow, Message{}) })
			if err := k.Step(); !errors.Is(err, tc.want) {
				t.Fatalf("Step() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestStatsCountActivations(t *testing.T) {
	k := mustNew(t, Config{
		Clock: NewManualClock(0),
		Tasks: []TaskSpec{
			{ID: taskLow, Name: "low", Priority: 1, Capacity: 1, Binds: IRQNone, Run: nop},
		},
	})
	_ = k.Start(func(cx *Context) {
		cx.Spawn(taskLow, Message{})
		cx.Spawn(taskLow, Message{})
	})
	_ = k.Step()

	st := k.Stats()
	if len(st) != 1 {
		t.Fatalf("len(Stats()) = %d, want 1", len(st))
	}
	if st[0].Activations != 1 || st[0].Dropped != 1 {
		t.Fatalf("Stats() = %+v, want 1 activation and 1 drop", st[0])
	}
}

func TestMarkPendingIsPickedUpByPolling(t *testing.T) {
	ran := make(chan struct{}, 1)
	k := mustNew(t, Config{
		Clock:        NewManualClock(0),
		PollInterval: time.Millisecond,
		Tasks: []TaskSpec{
			{ID: taskMid, Name: "mid", Priority: 3, Binds: irqMid, Run: func(*Context, Message) { ran <- struct{}{} }},
		},
	})
	if err := k.Start(nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for len(k.wake) > 0 {
		<-k.wake
	}

	if k.MarkPending(IRQ(maxIRQs)) {
		t.Fatal("MarkPending(out of range) = true")
	}
	if !k.MarkPending(irqMid) {
		t.Fatal("MarkPending() = false, want true")
	}
	if len(k.wake) != 0 {
		t.Fatal("MarkPending() signalled the wake channel")
	}
	if !k.IsPending(irqMid) {
		t.Fatal("IsPending() = false after MarkPending")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- k.Run(ctx) }()

	select {
	case <-ran:
	case <-ctx.Done():
		t.Fatal("task bound to a marked line never ran")
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}
