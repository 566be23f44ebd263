// Package hosttest provides an in-memory reference implementation of the
// host contract for tests.
//
// The "host thread" is whichever goroutine calls Step or Drain; posted
// work queues up until then, which makes asynchronous-protocol tests
// deterministic: launch the call, then Step once per expected hop.
package hosttest

import (
	"time"

	"github.com/anooppoommen/libsignal-client/errors"
	"github.com/anooppoommen/libsignal-client/host"
	"github.com/anooppoommen/libsignal-client/roots"
)

// Runtime is the in-memory reference host.
type Runtime struct {
	queue  chan func(*host.Context)
	cx     *host.Context
	module *Object
	Roots  *roots.Registry
}

// New creates a runtime with an empty module object.
func New() *Runtime {
	r := &Runtime{
		queue:  make(chan func(*host.Context), 128),
		module: NewObject(),
		Roots:  roots.NewRegistry(nil),
	}
	r.cx = host.NewContext(r, r.module)
	return r
}

// Context returns the host context. Tests act as the host thread.
func (r *Runtime) Context() *host.Context {
	return r.cx
}

// ModuleObject returns the module object for direct inspection.
func (r *Runtime) ModuleObject() *Object {
	return r.module
}

// Step waits up to timeout for one posted job and runs it.
// Returns false if nothing arrived.
func (r *Runtime) Step(timeout time.Duration) bool {
	select {
	case fn := <-r.queue:
		fn(r.cx)
		return true
	case <-time.After(timeout):
		return false
	}
}

// Drain runs queued jobs until the queue is empty.
func (r *Runtime) Drain() {
	for {
		select {
		case fn := <-r.queue:
			fn(r.cx)
		default:
			return
		}
	}
}

func (r *Runtime) Undefined() host.Value { return undefinedValue{} }

func (r *Runtime) Null() host.Value { return nullValue{} }

func (r *Runtime) Boolean(v bool) host.Value { return Bool(v) }

func (r *Runtime) Number(v float64) host.Value { return Number(v) }

func (r *Runtime) String(v string) host.Value { return Str(v) }

func (r *Runtime) NewBuffer(cx *host.Context, length int) (host.Buffer, error) {
	return &Buffer{data: make([]byte, length)}, nil
}

func (r *Runtime) NewObject(cx *host.Context) (host.Object, error) {
	return NewObject(), nil
}

func (r *Runtime) NewError(cx *host.Context, class string, msg string) host.Value {
	return &ErrorValue{Class: class, Message: msg}
}

func (r *Runtime) Box(cx *host.Context, payload any) host.Value {
	return boxedValue{payload: payload}
}

func (r *Runtime) Root(cx *host.Context, obj host.Object) *host.Root {
	return host.NewRoot(obj, r.Roots, "hosttest")
}

func (r *Runtime) Post(fn func(cx *host.Context)) error {
	select {
	case r.queue <- fn:
		return nil
	default:
		return errors.Closed("hosttest queue")
	}
}

func (r *Runtime) NewDeferred(cx *host.Context) (host.Deferred, error) {
	return &Deferred{}, nil
}

// BufferOf wraps existing bytes into a host buffer without copying, so
// tests can mutate the backing storage out from under a borrow.
func (r *Runtime) BufferOf(b []byte) *Buffer {
	return &Buffer{data: b}
}
