package hostjs

import (
	goerrors "errors"
	"fmt"
	"reflect"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/anooppoommen/libsignal-client/bridge"
	"github.com/anooppoommen/libsignal-client/errors"
	"github.com/anooppoommen/libsignal-client/host"
	"github.com/anooppoommen/libsignal-client/roots"
)

// Runtime adapts a goja engine to the host contract. The engine lives on
// its own loop goroutine; all host operations run there.
type Runtime struct {
	vm     *goja.Runtime
	loop   *loop
	reg    *roots.Registry
	logger *zap.Logger
	module *goja.Object
	cx     *host.Context
}

// Option configures the adapter.
type Option func(*Runtime)

// WithLogger sets the adapter's logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// New starts an engine on a fresh loop goroutine.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	r.reg = roots.NewRegistry(r.logger)
	r.loop = newLoop()

	err := r.loop.sync(func() {
		r.vm = goja.New()
		r.module = r.vm.NewObject()
		r.cx = host.NewContext(r, object{value{r, r.module, host.KindObject}, r.module})
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Close flushes the loop, reports leaked roots, and stops the engine.
func (r *Runtime) Close() error {
	_ = r.loop.sync(func() {})
	if leaked := r.reg.Close(); leaked > 0 {
		r.logger.Error("roots leaked at shutdown", zap.Int("count", leaked))
	}
	r.loop.stop()
	return nil
}

// Roots exposes the root registry for observation.
func (r *Runtime) Roots() *roots.Registry {
	return r.reg
}

// RegisterFunc installs a bridged native function as a JS global.
// Failures returned by fn are thrown into JS; host exceptions keep their
// exception value, everything else becomes a GoError.
func (r *Runtime) RegisterFunc(name string, fn func(cx *host.Context, args []host.Value) (host.Value, error)) error {
	return r.loop.sync(func() {
		r.vm.Set(name, func(call goja.FunctionCall) goja.Value {
			args := make([]host.Value, len(call.Arguments))
			for i, a := range call.Arguments {
				args[i] = r.wrap(a)
			}
			res, err := fn(r.cx, args)
			if err != nil {
				panic(r.throwable(err))
			}
			return r.unwrap(res)
		})
	})
}

// RegisterErrorClasses registers the global object named globalName as the
// exception-class table used when mapping native errors.
func (r *Runtime) RegisterErrorClasses(globalName string) error {
	var regErr error
	err := r.loop.sync(func() {
		v := r.wrap(r.vm.Get(globalName))
		obj, ok := host.AsObject(v)
		if !ok {
			regErr = errors.NotRegistered(globalName)
			return
		}
		regErr = bridge.RegisterErrorClasses(r.cx, obj)
	})
	if err != nil {
		return err
	}
	return regErr
}

// EvalString evaluates JS source on the loop and returns the result's
// string form.
func (r *Runtime) EvalString(src string) (string, error) {
	var out string
	var evalErr error
	err := r.loop.sync(func() {
		v, err := r.vm.RunString(src)
		if err != nil {
			evalErr = wrapThrown(r, err)
			return
		}
		if v == nil || goja.IsUndefined(v) {
			out = "undefined"
			return
		}
		out = v.String()
	})
	if err != nil {
		return "", err
	}
	return out, evalErr
}

// Eval evaluates JS source and discards the result.
func (r *Runtime) Eval(src string) error {
	_, err := r.EvalString(src)
	return err
}

// Host contract implementation. Everything below runs on the loop.

func (r *Runtime) Undefined() host.Value {
	return value{r, goja.Undefined(), host.KindUndefined}
}

func (r *Runtime) Null() host.Value {
	return value{r, goja.Null(), host.KindNull}
}

func (r *Runtime) Boolean(v bool) host.Value {
	return value{r, r.vm.ToValue(v), host.KindBoolean}
}

func (r *Runtime) Number(v float64) host.Value {
	return value{r, r.vm.ToValue(v), host.KindNumber}
}

func (r *Runtime) String(v string) host.Value {
	return value{r, r.vm.ToValue(v), host.KindString}
}

func (r *Runtime) NewBuffer(cx *host.Context, length int) (host.Buffer, error) {
	ab := r.vm.NewArrayBuffer(make([]byte, length))
	return buffer{value{r, r.vm.ToValue(ab), host.KindBuffer}, ab}, nil
}

func (r *Runtime) NewObject(cx *host.Context) (host.Object, error) {
	o := r.vm.NewObject()
	return object{value{r, o, host.KindObject}, o}, nil
}

// NewError constructs an exception value of the named global class,
// degrading to a GoError when the class is missing.
func (r *Runtime) NewError(cx *host.Context, class string, msg string) host.Value {
	if ctorObj, ok := r.vm.Get(class).(*goja.Object); ok {
		if ctor, ok := goja.AssertConstructor(ctorObj); ok {
			if inst, err := ctor(nil, r.vm.ToValue(msg)); err == nil {
				return r.wrap(inst)
			}
		}
	}
	return r.wrap(r.vm.NewGoError(fmt.Errorf("%s: %s", class, msg)))
}

func (r *Runtime) Box(cx *host.Context, payload any) host.Value {
	return boxed{value{r, r.vm.ToValue(&payloadBox{payload}), host.KindBoxed}, payload}
}

func (r *Runtime) Root(cx *host.Context, obj host.Object) *host.Root {
	return host.NewRoot(obj, r.reg, "hostjs")
}

func (r *Runtime) Post(fn func(cx *host.Context)) error {
	return r.loop.post(func() { fn(r.cx) })
}

func (r *Runtime) NewDeferred(cx *host.Context) (host.Deferred, error) {
	p, resolve, reject := r.vm.NewPromise()
	return &deferred{
		r:       r,
		promise: r.vm.ToValue(p),
		resolve: resolve,
		reject:  reject,
	}, nil
}

// deferred adapts a JS promise to the host deferred contract.
type deferred struct {
	r       *Runtime
	promise goja.Value
	resolve func(result any)
	reject  func(reason any)
}

func (d *deferred) Value() host.Value {
	return d.r.wrap(d.promise)
}

func (d *deferred) Resolve(cx *host.Context, v host.Value) {
	d.resolve(d.r.unwrap(v))
}

func (d *deferred) Reject(cx *host.Context, errValue host.Value) {
	d.reject(d.r.unwrap(errValue))
}

// wrap classifies a goja value into the host taxonomy.
func (r *Runtime) wrap(v goja.Value) host.Value {
	if v == nil || goja.IsUndefined(v) {
		return r.Undefined()
	}
	if goja.IsNull(v) {
		return r.Null()
	}

	if obj, ok := v.(*goja.Object); ok {
		switch export := obj.Export().(type) {
		case goja.ArrayBuffer:
			return buffer{value{r, v, host.KindBuffer}, export}
		case *payloadBox:
			return boxed{value{r, v, host.KindBoxed}, export.payload}
		}
		if _, callable := goja.AssertFunction(obj); callable {
			return function{object{value{r, v, host.KindFunction}, obj}}
		}
		return object{value{r, v, host.KindObject}, obj}
	}

	switch v.ExportType().Kind() {
	case reflect.Bool:
		return value{r, v, host.KindBoolean}
	case reflect.String:
		return value{r, v, host.KindString}
	case reflect.Int64, reflect.Float64:
		return value{r, v, host.KindNumber}
	default:
		return value{r, v, host.KindObject}
	}
}

// unwrap recovers the goja value behind a host value. Values always
// originate from this runtime; anything else is a programming error and
// maps to undefined.
func (r *Runtime) unwrap(v host.Value) goja.Value {
	if v == nil {
		return goja.Undefined()
	}
	if w, ok := v.(interface{ gojaValue() goja.Value }); ok {
		return w.gojaValue()
	}
	r.logger.Warn("foreign host value crossed into hostjs",
		zap.String("kind", v.Kind().String()))
	return goja.Undefined()
}

// throwable picks the panic value that throws err into JS.
func (r *Runtime) throwable(err error) *goja.Object {
	if exc, ok := err.(*host.Exception); ok {
		if w, ok := exc.Value.(interface{ gojaValue() goja.Value }); ok {
			if obj, ok := w.gojaValue().(*goja.Object); ok {
				return obj
			}
		}
	}
	var bridgeErr *errors.Error
	if goerrors.As(err, &bridgeErr) {
		if obj, ok := r.NewError(r.cx, string(bridgeErr.HostClass()), bridgeErr.Error()).(interface{ gojaValue() goja.Value }); ok {
			if o, ok := obj.gojaValue().(*goja.Object); ok {
				return o
			}
		}
	}
	return r.vm.NewGoError(err)
}
