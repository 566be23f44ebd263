package hosttest

import (
	"github.com/anooppoommen/libsignal-client/errors"
	"github.com/anooppoommen/libsignal-client/host"
)

type undefinedValue struct{}

func (undefinedValue) Kind() host.Kind { return host.KindUndefined }

type nullValue struct{}

func (nullValue) Kind() host.Kind { return host.KindNull }

// Bool is a host boolean.
type Bool bool

func (Bool) Kind() host.Kind { return host.KindBoolean }

func (b Bool) Bool() bool { return bool(b) }

// Number is a host number.
type Number float64

func (Number) Kind() host.Kind { return host.KindNumber }

func (n Number) Float() float64 { return float64(n) }

// Str is a host string.
type Str string

func (Str) Kind() host.Kind { return host.KindString }

func (s Str) Text() string { return string(s) }

// Buffer is a host-owned byte buffer. Bytes aliases the backing storage;
// tests mutate it directly to exercise the integrity checksum.
type Buffer struct {
	data []byte
}

func (*Buffer) Kind() host.Kind { return host.KindBuffer }

func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) Len() int { return len(b.data) }

// Object is a map-backed host object.
type Object struct {
	props map[string]host.Value
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{props: make(map[string]host.Value)}
}

func (*Object) Kind() host.Kind { return host.KindObject }

func (o *Object) Get(cx *host.Context, name string) (host.Value, error) {
	v, ok := o.props[name]
	if !ok {
		return undefinedValue{}, nil
	}
	return v, nil
}

func (o *Object) Set(cx *host.Context, name string, v host.Value) error {
	o.props[name] = v
	return nil
}

// Function is a callable host value backed by Go functions.
type Function struct {
	CallFn      func(cx *host.Context, this host.Value, args []host.Value) (host.Value, error)
	ConstructFn func(cx *host.Context, args []host.Value) (host.Value, error)
}

func (*Function) Kind() host.Kind { return host.KindFunction }

func (f *Function) Call(cx *host.Context, this host.Value, args ...host.Value) (host.Value, error) {
	if f.CallFn == nil {
		return nil, errors.TypeMismatch(errors.PhaseHost, "function", "callable")
	}
	return f.CallFn(cx, this, args)
}

func (f *Function) Construct(cx *host.Context, args ...host.Value) (host.Value, error) {
	if f.ConstructFn == nil {
		return nil, errors.TypeMismatch(errors.PhaseHost, "function", "constructor")
	}
	return f.ConstructFn(cx, args)
}

type boxedValue struct {
	payload any
}

func (boxedValue) Kind() host.Kind { return host.KindBoxed }

func (b boxedValue) Unbox() any { return b.payload }

// ErrorValue is a host exception value with its class name preserved for
// assertions.
type ErrorValue struct {
	Class   string
	Message string
}

func (*ErrorValue) Kind() host.Kind { return host.KindObject }

func (e *ErrorValue) Get(cx *host.Context, name string) (host.Value, error) {
	switch name {
	case "name":
		return Str(e.Class), nil
	case "message":
		return Str(e.Message), nil
	default:
		return undefinedValue{}, nil
	}
}

func (e *ErrorValue) Set(cx *host.Context, name string, v host.Value) error {
	return errors.TypeMismatch(errors.PhaseHost, "error", "mutable object")
}

// DeferredState tracks how a Deferred settled.
type DeferredState int

const (
	Pending DeferredState = iota
	Resolved
	Rejected
)

// Deferred is the reference promise analogue. Tests inspect State and
// Result after draining the queue.
type Deferred struct {
	state  DeferredState
	result host.Value
}

func (*Deferred) Kind() host.Kind { return host.KindObject }

func (d *Deferred) Value() host.Value { return d }

func (d *Deferred) Resolve(cx *host.Context, v host.Value) {
	if d.state != Pending {
		panic("hosttest: deferred settled twice")
	}
	d.state = Resolved
	d.result = v
}

func (d *Deferred) Reject(cx *host.Context, errValue host.Value) {
	if d.state != Pending {
		panic("hosttest: deferred settled twice")
	}
	d.state = Rejected
	d.result = errValue
}

func (d *Deferred) State() DeferredState { return d.state }

func (d *Deferred) Result() host.Value { return d.result }

// Get and Set make Deferred usable anywhere an object is expected.
func (d *Deferred) Get(cx *host.Context, name string) (host.Value, error) {
	return undefinedValue{}, nil
}

func (d *Deferred) Set(cx *host.Context, name string, v host.Value) error {
	return errors.TypeMismatch(errors.PhaseHost, "deferred", "mutable object")
}
