package kernel

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	ErrUnknownTask        = errors.New("unknown task")
	ErrUnknownResource    = errors.New("unknown resource")
	ErrPriority           = errors.New("priority out of range")
	ErrCapacity           = errors.New("capacity out of range")
	ErrDuplicateTask      = errors.New("duplicate task")
	ErrDuplicateResource  = errors.New("duplicate resource")
	ErrDuplicateIRQ       = errors.New("interrupt bound twice")
	ErrUnknownIRQ         = errors.New("unknown interrupt")
	ErrNoHandler          = errors.New("task has no handler")
	ErrNoClock            = errors.New("no clock")
	ErrUndeclaredResource = errors.New("resource not declared by task")
	ErrNestedLock         = errors.New("nested resource lock")
	ErrUnboundResource    = errors.New("resource not registered with a kernel")
	ErrHalted             = errors.New("kernel halted")
	ErrQueueFull          = errors.New("task queue full")
)

// FaultInfo describes a fatal fault raised while a task was running.
type FaultInfo struct {
	Task  TaskID
	Name  string
	Value any
	Stack []byte
}

// FaultError is returned by Run and Step once the kernel has halted.
type FaultError struct {
	FaultInfo
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("fault in task %d (%s): %v", e.Task, e.Name, e.Value)
}

func (e *FaultError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// fault is the panic value used by Context.Fault.
type fault struct {
	err error
}

type faultState struct {
	active  atomic.Bool
	once    sync.Once
	handler func(FaultInfo)
	info    FaultInfo
}

// trigger records the first fault and calls the handler once. The handler
// must not panic.
func (s *faultState) trigger(info FaultInfo) {
	s.once.Do(func() {
		s.active.Store(true)
		info.Stack = captureStack()
		s.info = info
		if s.handler != nil {
			s.handler(info)
		}
	})
}

func (s *faultState) err() error {
	if !s.active.Load() {
		return nil
	}
	return &FaultError{FaultInfo: s.info}
}
