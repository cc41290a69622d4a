package kernel

// Context is handed to a task for the duration of one activation. It must
// not be retained after the handler returns.
type Context struct {
	k         *Kernel
	task      int
	prio      Priority
	scheduled Instant
	held      bool
}

// TaskID returns the running task. Init reports 0.
func (c *Context) TaskID() TaskID {
	if c.task == noTask {
		return 0
	}
	return c.k.tasks[c.task].spec.ID
}

// Priority returns the static priority of the running task.
func (c *Context) Priority() Priority { return c.prio }

// Scheduled returns the instant this activation was due: the fire cycle
// for scheduled activations, the spawn or interrupt cycle otherwise.
func (c *Context) Scheduled() Instant { return c.scheduled }

// Now reads the cycle clock.
func (c *Context) Now() Instant { return c.k.clock.Now() }

// Spawn enqueues a ready activation of a software task. A higher-priority
// target runs before Spawn returns.
func (c *Context) Spawn(id TaskID, msg Message) SpawnResult {
	return c.k.spawn(id, msg)
}

// Schedule arms an activation of a software task for an absolute cycle.
func (c *Context) Schedule(id TaskID, at Instant, msg Message) SpawnResult {
	return c.k.schedule(id, at, msg)
}

// Delay busy-waits for c cycles. Interrupts and tasks above the current
// execution priority keep running meanwhile.
func (c *Context) Delay(cycles Cycles) {
	c.k.delay(cycles)
}

// Fault halts the kernel. It does not return.
func (c *Context) Fault(err error) {
	if err == nil {
		err = ErrHalted
	}
	panic(fault{err: err})
}

func (c *Context) uses(id ResourceID) bool {
	if c.task == noTask {
		return true
	}
	return c.k.tasks[c.task].uses&(1<<id) != 0
}
