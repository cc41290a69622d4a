package kernel

import "fmt"

const (
	// MaxPriority is the highest task priority. Priority 0 is the idle level.
	MaxPriority Priority = 15

	maxTasks     = 32
	maxResources = 16
	maxIRQs      = 64

	// MaxCapacity bounds the per-task ready queue.
	MaxCapacity = 16

	// MaxPayloadBytes is the payload size carried by one activation.
	MaxPayloadBytes = 32
)

// Priority orders tasks; a higher value preempts a lower one.
type Priority uint8

// TaskID identifies an entry of the static task table.
type TaskID uint8

// ResourceID identifies a shared resource.
type ResourceID uint8

// IRQ identifies a hardware interrupt line. IRQNone marks a software task.
type IRQ uint8

const IRQNone IRQ = 0xFF

// Message is the fixed-size payload of a task activation.
type Message struct {
	Kind uint8
	Len  uint8
	Data [MaxPayloadBytes]byte
}

// Payload returns the used part of Data.
func (m *Message) Payload() []byte {
	n := int(m.Len)
	if n > MaxPayloadBytes {
		n = MaxPayloadBytes
	}
	return m.Data[:n]
}

// MessageOf builds a message, truncating data to MaxPayloadBytes.
func MessageOf(kind uint8, data []byte) Message {
	var m Message
	m.Kind = kind
	n := copy(m.Data[:], data)
	m.Len = uint8(n)
	return m
}

// Handler is the body of a task. It runs to completion per activation.
type Handler func(cx *Context, msg Message)

// TaskSpec is one row of the static task table.
type TaskSpec struct {
	ID       TaskID
	Name     string
	Priority Priority
	// Capacity is the number of outstanding activations (ready plus
	// scheduled). Interrupt-bound tasks always have a single pending flag.
	Capacity  int
	Binds     IRQ
	Resources []ResourceID
	Run       Handler
}

// SpawnResult describes the outcome of a spawn or schedule request.
type SpawnResult uint8

const (
	SpawnOK SpawnResult = iota
	SpawnQueueFull
	SpawnUnknownTask
	SpawnBoundTask
)

func (r SpawnResult) String() string {
	switch r {
	case SpawnOK:
		return "ok"
	case SpawnQueueFull:
		return "queue full"
	case SpawnUnknownTask:
		return "unknown task"
	case SpawnBoundTask:
		return "task is bound to an interrupt"
	default:
		return "unknown"
	}
}

// Err maps a result to the matching sentinel error, nil for SpawnOK.
func (r SpawnResult) Err() error {
	switch r {
	case SpawnOK:
		return nil
	case SpawnQueueFull:
		return ErrQueueFull
	case SpawnUnknownTask:
		return ErrUnknownTask
	default:
		return fmt.Errorf("spawn: %s", r)
	}
}

// TaskStats are the counters of one task.
type TaskStats struct {
	ID          TaskID
	Name        string
	Priority    Priority
	Activations uint32
	Dropped     uint32
}
