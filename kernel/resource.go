package kernel

import "fmt"

// Resource is a shared cell guarded by a ceiling-priority lock. The ceiling
// is the highest priority of any task that declares the resource, computed
// by New.
type Resource[T any] struct {
	id      ResourceID
	name    string
	k       *Kernel
	ceiling Priority
	value   T
}

// NewResource wraps value. It must be listed in Config.Resources before use.
func NewResource[T any](id ResourceID, name string, value T) *Resource[T] {
	return &Resource[T]{id: id, name: name, value: value}
}

func (r *Resource[T]) ID() ResourceID    { return r.id }
func (r *Resource[T]) Name() string      { return r.name }
func (r *Resource[T]) Ceiling() Priority { return r.ceiling }

func (r *Resource[T]) resourceID() ResourceID { return r.id }
func (r *Resource[T]) resourceName() string   { return r.name }

func (r *Resource[T]) bind(k *Kernel, ceiling Priority) {
	r.k = k
	r.ceiling = ceiling
}

// Lock runs fn with exclusive access to the value. The execution priority
// is raised to the ceiling for the duration of fn and restored afterwards,
// after which any task that became ready above the restored priority runs.
//
// Locking a resource the task did not declare, or locking while already
// holding a resource, halts the kernel.
func (r *Resource[T]) Lock(cx *Context, fn func(v *T)) {
	k := r.k
	if k == nil || cx.k != k {
		panic(fault{err: fmt.Errorf("%w: %s", ErrUnboundResource, r.name)})
	}
	if !cx.uses(r.id) {
		panic(fault{err: fmt.Errorf("%w: %s", ErrUndeclaredResource, r.name)})
	}
	if cx.held {
		panic(fault{err: fmt.Errorf("%w: %s", ErrNestedLock, r.name)})
	}

	prev := k.running
	func() {
		defer func() {
			cx.held = false
			k.running = prev
		}()
		if r.ceiling > prev {
			k.running = r.ceiling
		}
		cx.held = true
		fn(&r.value)
	}()
	k.preempt()
}
