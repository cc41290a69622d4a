// Package kernel is a single-core, priority-preemptive, run-to-completion
// task scheduler with ceiling-priority resource locks and cycle-accurate
// deferred activation.
//
// All task code runs on the goroutine that calls Start, Step and Run.
// Interrupt sources on other goroutines only mark interrupt lines pending
// with Pend; the bound tasks run at the next preemption point.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"wiohid/internal/log"
)

// initPriority is above every task: nothing is dispatched while init runs.
const initPriority = MaxPriority + 1

const noTask = -1

// Shared is a resource that can be registered with a kernel.
type Shared interface {
	resourceID() ResourceID
	resourceName() string
	bind(k *Kernel, ceiling Priority)
}

// Config is the static system description.
type Config struct {
	Clock     Clock
	Tasks     []TaskSpec
	Resources []Shared
	Logger    *slog.Logger
	// OnFault runs once, on the first fatal fault. It must not panic.
	OnFault func(FaultInfo)
	// PollInterval makes Run check for pending lines at this rate even
	// without a wakeup. Required when lines are raised with MarkPending.
	PollInterval time.Duration
}

type taskState struct {
	spec     TaskSpec
	uses     uint32
	queue    readyQueue
	deferred int
	cx       Context

	activations atomic.Uint32
	dropped     atomic.Uint32
}

type resourceInfo struct {
	name    string
	ceiling Priority
	used    bool
}

// Kernel is the scheduler instance.
type Kernel struct {
	clock Clock
	log   *slog.Logger

	tasks   []taskState
	byID    [maxTasks]int16
	byIRQ   [maxIRQs]int16
	order   []int
	res     [maxResources]resourceInfo
	pending atomic.Uint64
	masked  atomic.Uint64

	deferred deferredQueue

	running Priority
	current int
	started bool

	wake   chan struct{}
	poll   time.Duration
	faults faultState
}

// New validates the static task and resource tables and builds a kernel.
// Every inconsistency is reported here; none is detected later at runtime.
func New(cfg Config) (*Kernel, error) {
	if cfg.Clock == nil {
		return nil, ErrNoClock
	}
	if len(cfg.Tasks) > maxTasks {
		return nil, fmt.Errorf("kernel: %d tasks, max %d: %w", len(cfg.Tasks), maxTasks, ErrCapacity)
	}

	k := &Kernel{
		clock:   cfg.Clock,
		log:     log.For(cfg.Logger, log.ComponentKernel),
		current: noTask,
		wake:    make(chan struct{}, 1),
		poll:    cfg.PollInterval,
	}
	k.faults.handler = cfg.OnFault
	for i := range k.byID {
		k.byID[i] = noTask
	}
	for i := range k.byIRQ {
		k.byIRQ[i] = noTask
	}

	for _, r := range cfg.Resources {
		id := r.resourceID()
		if int(id) >= maxResources {
			return nil, fmt.Errorf("kernel: resource %q id %d: %w", r.resourceName(), id, ErrUnknownResource)
		}
		if k.res[id].used {
			return nil, fmt.Errorf("kernel: resource %q id %d: %w", r.resourceName(), id, ErrDuplicateResource)
		}
		k.res[id] = resourceInfo{name: r.resourceName(), used: true}
	}

	k.tasks = make([]taskState, len(cfg.Tasks))
	deferredCap := 0
	for i, spec := range cfg.Tasks {
		if err := k.addTask(i, spec); err != nil {
			return nil, err
		}
		if spec.Binds == IRQNone {
			deferredCap += spec.Capacity
		}
	}

	for _, r := range cfg.Resources {
		id := r.resourceID()
		r.bind(k, k.res[id].ceiling)
	}

	k.order = make([]int, len(k.tasks))
	for i := range k.order {
		k.order[i] = i
	}
	sort.SliceStable(k.order, func(a, b int) bool {
		return k.tasks[k.order[a]].spec.Priority > k.tasks[k.order[b]].spec.Priority
	})

	k.deferred = newDeferredQueue(deferredCap)
	k.clock.OnWake(k.signal)
	return k, nil
}

func (k *Kernel) addTask(i int, spec TaskSpec) error {
	if int(spec.ID) >= maxTasks {
		return fmt.Errorf("kernel: task %q id %d: %w", spec.Name, spec.ID, ErrUnknownTask)
	}
	if k.byID[spec.ID] != noTask {
		return fmt.Errorf("kernel: task %q id %d: %w", spec.Name, spec.ID, ErrDuplicateTask)
	}
	if spec.Priority == 0 || spec.Priority > MaxPriority {
		return fmt.Errorf("kernel: task %q priority %d: %w", spec.Name, spec.Priority, ErrPriority)
	}
	if spec.Run == nil {
		return fmt.Errorf("kernel: task %q: %w", spec.Name, ErrNoHandler)
	}

	st := &k.tasks[i]
	st.spec = spec

	if spec.Binds != IRQNone {
		if int(spec.Binds) >= maxIRQs {
			return fmt.Errorf("kernel: task %q irq %d: %w", spec.Name, spec.Binds, ErrUnknownIRQ)
		}
		if k.byIRQ[spec.Binds] != noTask {
			return fmt.Errorf("kernel: task %q irq %d: %w", spec.Name, spec.Binds, ErrDuplicateIRQ)
		}
		k.byIRQ[spec.Binds] = int16(i)
		st.spec.Capacity = 1
	} else {
		if spec.Capacity < 1 || spec.Capacity > MaxCapacity {
			return fmt.Errorf("kernel: task %q capacity %d: %w", spec.Name, spec.Capacity, ErrCapacity)
		}
		st.queue = newReadyQueue(spec.Capacity)
	}

	for _, id := range spec.Resources {
		if int(id) >= maxResources || !k.res[id].used {
			return fmt.Errorf("kernel: task %q resource %d: %w", spec.Name, id, ErrUnknownResource)
		}
		st.uses |= 1 << id
		if spec.Priority > k.res[id].ceiling {
			k.res[id].ceiling = spec.Priority
		}
	}

	k.byID[spec.ID] = int16(i)
	return nil
}

// Ceiling returns the computed ceiling of a resource.
func (k *Kernel) Ceiling(id ResourceID) (Priority, bool) {
	if int(id) >= maxResources || !k.res[id].used {
		return 0, false
	}
	return k.res[id].ceiling, true
}

// Start runs init with every task held off, then opens dispatching. init
// may spawn, schedule and lock any resource.
func (k *Kernel) Start(init func(cx *Context)) (err error) {
	if k.started {
		return errors.New("kernel: already started")
	}
	k.started = true

	defer func() {
		if r := recover(); r != nil {
			err = k.recoverFault(r)
		}
	}()

	k.running = initPriority
	if init != nil {
		cx := Context{k: k, task: noTask, prio: initPriority, scheduled: k.clock.Now()}
		init(&cx)
	}
	k.running = 0
	k.armAlarm()
	return nil
}

// Step services due timers, pending interrupts and ready tasks until none
// is left above the idle level.
func (k *Kernel) Step() (err error) {
	if !k.started {
		return errors.New("kernel: not started")
	}
	if err := k.faults.err(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = k.recoverFault(r)
		}
	}()

	k.preempt()
	k.armAlarm()
	return nil
}

// Run steps the kernel whenever an interrupt is pended or the alarm fires,
// until ctx is cancelled or a fault halts the kernel.
func (k *Kernel) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if k.poll > 0 {
		t := time.NewTicker(k.poll)
		defer t.Stop()
		tick = t.C
	}
	for {
		if err := k.Step(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-k.wake:
		case <-tick:
		}
	}
}

// Pend marks an interrupt line pending. It is safe to call from any
// goroutine and never runs task code itself.
func (k *Kernel) Pend(irq IRQ) bool {
	if int(irq) >= maxIRQs || k.byIRQ[irq] == noTask {
		return false
	}
	setBit(&k.pending, irq)
	k.signal()
	return true
}

// MarkPending sets the pending flag of irq and nothing else. Unlike Pend it
// does not touch the wake channel, so it may be called from interrupt
// context. Run only notices the line at its next poll tick.
func (k *Kernel) MarkPending(irq IRQ) bool {
	if int(irq) >= maxIRQs || k.byIRQ[irq] == noTask {
		return false
	}
	setBit(&k.pending, irq)
	return true
}

// ClearPending drops a pending interrupt without running its task.
func (k *Kernel) ClearPending(irq IRQ) {
	if int(irq) < maxIRQs {
		clearBit(&k.pending, irq)
	}
}

// IsPending reports whether irq is pending.
func (k *Kernel) IsPending(irq IRQ) bool {
	return int(irq) < maxIRQs && k.pending.Load()&(1<<irq) != 0
}

// Mask holds off an interrupt line. A masked line stays pending.
func (k *Kernel) Mask(irq IRQ) {
	if int(irq) < maxIRQs {
		setBit(&k.masked, irq)
	}
}

// Unmask re-enables an interrupt line.
func (k *Kernel) Unmask(irq IRQ) {
	if int(irq) < maxIRQs {
		clearBit(&k.masked, irq)
		k.signal()
	}
}

// Halted reports whether a fault stopped the kernel.
func (k *Kernel) Halted() bool { return k.faults.active.Load() }

// Dropped returns how many activations of a task were dropped.
func (k *Kernel) Dropped(id TaskID) uint32 {
	if int(id) >= maxTasks || k.byID[id] == noTask {
		return 0
	}
	return k.tasks[k.byID[id]].dropped.Load()
}

// Stats returns the counters of every task in table order.
func (k *Kernel) Stats() []TaskStats {
	out := make([]TaskStats, 0, len(k.tasks))
	for i := range k.tasks {
		t := &k.tasks[i]
		out = append(out, TaskStats{
			ID:          t.spec.ID,
			Name:        t.spec.Name,
			Priority:    t.spec.Priority,
			Activations: t.activations.Load(),
			Dropped:     t.dropped.Load(),
		})
	}
	return out
}

func (k *Kernel) signal() {
	select {
	case k.wake <- struct{}{}:
	default:
	}
}

// preempt runs every ready activation whose priority is above the current
// execution priority, highest first.
func (k *Kernel) preempt() {
	for {
		k.releaseDue()
		idx := k.highestReady()
		if idx == noTask {
			return
		}
		k.run(idx)
	}
}

func (k *Kernel) highestReady() int {
	pending := k.pending.Load() &^ k.masked.Load()
	for _, idx := range k.order {
		t := &k.tasks[idx]
		if t.spec.Priority <= k.running {
			return noTask
		}
		if t.spec.Binds != IRQNone {
			if pending&(1<<t.spec.Binds) != 0 {
				return idx
			}
			continue
		}
		if t.queue.len() > 0 {
			return idx
		}
	}
	return noTask
}

func (k *Kernel) run(idx int) {
	t := &k.tasks[idx]

	var a activation
	if t.spec.Binds != IRQNone {
		clearBit(&k.pending, t.spec.Binds)
		a.at = k.clock.Now()
	} else {
		a, _ = t.queue.pop()
	}

	prevPrio, prevTask := k.running, k.current
	k.running = t.spec.Priority
	k.current = idx
	t.activations.Add(1)

	// A task never preempts itself, so its context slot is free here.
	cx := &t.cx
	*cx = Context{k: k, task: idx, prio: t.spec.Priority, scheduled: a.at}
	t.spec.Run(cx, a.msg)

	k.running, k.current = prevPrio, prevTask
}

// releaseDue moves every due deferred entry to its ready queue. The slot was
// reserved when the entry was scheduled, so the push cannot fail.
func (k *Kernel) releaseDue() {
	if k.deferred.len() == 0 {
		return
	}
	now := k.clock.Now()
	for {
		e, ok := k.deferred.popDue(now)
		if !ok {
			return
		}
		t := &k.tasks[k.byID[e.task]]
		t.deferred--
		t.queue.push(activation{msg: e.msg, at: e.at})
	}
}

func (k *Kernel) armAlarm() {
	if at, ok := k.deferred.next(); ok {
		k.clock.WakeAt(at)
	}
}

func (k *Kernel) softTask(id TaskID) (*taskState, SpawnResult) {
	if int(id) >= maxTasks || k.byID[id] == noTask {
		return nil, SpawnUnknownTask
	}
	t := &k.tasks[k.byID[id]]
	if t.spec.Binds != IRQNone {
		return nil, SpawnBoundTask
	}
	return t, SpawnOK
}

func (k *Kernel) spawn(id TaskID, msg Message) SpawnResult {
	t, res := k.softTask(id)
	if res != SpawnOK {
		return res
	}
	if t.queue.len()+t.deferred >= t.spec.Capacity {
		k.drop(t)
		return SpawnQueueFull
	}
	t.queue.push(activation{msg: msg, at: k.clock.Now()})
	k.preempt()
	return SpawnOK
}

func (k *Kernel) schedule(id TaskID, at Instant, msg Message) SpawnResult {
	t, res := k.softTask(id)
	if res != SpawnOK {
		return res
	}
	if t.queue.len()+t.deferred >= t.spec.Capacity || !k.deferred.insert(id, at, msg) {
		k.drop(t)
		return SpawnQueueFull
	}
	t.deferred++
	k.armAlarm()
	k.preempt()
	return SpawnOK
}

func (k *Kernel) drop(t *taskState) {
	n := t.dropped.Add(1)
	if k.log.Enabled(context.Background(), slog.LevelDebug) {
		k.log.Debug("activation dropped", "task", t.spec.Name, "dropped", n)
	}
}

func (k *Kernel) recoverFault(r any) error {
	info := FaultInfo{Task: 0, Name: "init", Value: r}
	if f, ok := r.(fault); ok {
		info.Value = f.err
	}
	if k.current != noTask {
		info.Task = k.tasks[k.current].spec.ID
		info.Name = k.tasks[k.current].spec.Name
	}
	k.log.Error("fatal fault", "task", info.Name, "err", fmt.Sprint(info.Value))
	k.faults.trigger(info)
	k.running = initPriority
	k.current = noTask
	return k.faults.err()
}

func (k *Kernel) delay(c Cycles) {
	deadline := k.clock.Now().Add(c)
	for !deadline.Reached(k.clock.Now()) {
		k.preempt()
		runtime.Gosched()
	}
}

func setBit(v *atomic.Uint64, irq IRQ) {
	for {
		old := v.Load()
		if v.CompareAndSwap(old, old|1<<irq) {
			return
		}
	}
}

func clearBit(v *atomic.Uint64, irq IRQ) {
	for {
		old := v.Load()
		if v.CompareAndSwap(old, old&^(1<<irq)) {
			return
		}
	}
}
