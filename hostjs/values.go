package hostjs

import (
	"github.com/dop251/goja"

	"github.com/anooppoommen/libsignal-client/errors"
	"github.com/anooppoommen/libsignal-client/host"
)

// payloadBox is the Go value goja wraps when the bridge boxes a native
// payload onto a wrapper object.
type payloadBox struct {
	payload any
}

// value wraps a goja value with its host kind. All wrappers keep the
// owning runtime so property access can assert loop confinement.
type value struct {
	r    *Runtime
	v    goja.Value
	kind host.Kind
}

func (v value) Kind() host.Kind { return v.kind }

func (v value) gojaValue() goja.Value { return v.v }

func (v value) Bool() bool { return v.v.ToBoolean() }

func (v value) Float() float64 { return v.v.ToFloat() }

func (v value) Text() string { return v.v.String() }

// object wraps a goja object.
type object struct {
	value
	o *goja.Object
}

func (o object) Get(cx *host.Context, name string) (host.Value, error) {
	return o.r.wrap(o.o.Get(name)), nil
}

func (o object) Set(cx *host.Context, name string, v host.Value) error {
	return o.o.Set(name, o.r.unwrap(v))
}

// buffer wraps a JS ArrayBuffer. Bytes aliases the engine's backing
// storage.
type buffer struct {
	value
	ab goja.ArrayBuffer
}

func (b buffer) Bytes() []byte { return b.ab.Bytes() }

func (b buffer) Len() int { return len(b.ab.Bytes()) }

// function wraps a callable goja object.
type function struct {
	object
}

func (f function) Call(cx *host.Context, this host.Value, args ...host.Value) (host.Value, error) {
	callable, ok := goja.AssertFunction(f.o)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseHost, "object", "callable")
	}
	gargs := make([]goja.Value, len(args))
	for i, a := range args {
		gargs[i] = f.r.unwrap(a)
	}
	var gthis goja.Value = goja.Undefined()
	if this != nil {
		gthis = f.r.unwrap(this)
	}
	res, err := callable(gthis, gargs...)
	if err != nil {
		return nil, wrapThrown(f.r, err)
	}
	return f.r.wrap(res), nil
}

func (f function) Construct(cx *host.Context, args ...host.Value) (host.Value, error) {
	ctor, ok := goja.AssertConstructor(f.o)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseHost, "function", "constructor")
	}
	gargs := make([]goja.Value, len(args))
	for i, a := range args {
		gargs[i] = f.r.unwrap(a)
	}
	res, err := ctor(nil, gargs...)
	if err != nil {
		return nil, wrapThrown(f.r, err)
	}
	return f.r.wrap(res), nil
}

// boxed carries a native payload embedded in a wrapper object.
type boxed struct {
	value
	payload any
}

func (b boxed) Unbox() any { return b.payload }

// wrapThrown converts a goja error (usually an *goja.Exception holding the
// thrown JS value) into a host exception.
func wrapThrown(r *Runtime, err error) error {
	if exc, ok := err.(*goja.Exception); ok {
		return host.Throw(r.wrap(exc.Value()), exc.Error())
	}
	return err
}
