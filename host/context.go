package host

// Context is the proof that the caller is executing on the host thread.
// It is handed to bridged functions and to callbacks scheduled through
// Runtime.Post, and must not be retained or shared across goroutines.
type Context struct {
	rt     Runtime
	module Object
}

// NewContext builds a context for a runtime and its module object.
// Adapters call this; bridged code receives contexts, it never creates them.
func NewContext(rt Runtime, module Object) *Context {
	return &Context{rt: rt, module: module}
}

// Runtime returns the host runtime this context belongs to.
func (cx *Context) Runtime() Runtime {
	return cx.rt
}

// Module returns the module object, the registration point for host-side
// tables such as the exception-class registry.
func (cx *Context) Module() Object {
	return cx.module
}

// Runtime is the set of operations the bridge needs from a host runtime.
// All methods except Post must be called on the host thread.
type Runtime interface {
	// Value constructors.
	Undefined() Value
	Null() Value
	Boolean(v bool) Value
	Number(v float64) Value
	String(v string) Value

	// NewBuffer allocates a host-owned buffer of the given length.
	NewBuffer(cx *Context, length int) (Buffer, error)

	// NewObject allocates an empty host object.
	NewObject(cx *Context) (Object, error)

	// NewError constructs a host exception value of the given class.
	NewError(cx *Context, class string, msg string) Value

	// Box wraps an opaque native payload into a host value suitable for
	// storing on a wrapper object.
	Box(cx *Context, payload any) Value

	// Root prevents the host's collector from reclaiming obj until the
	// returned Root is released.
	Root(cx *Context, obj Object) *Root

	// Post schedules fn onto the host thread. It is the only Runtime
	// method that is safe to call from any goroutine. It fails once the
	// host loop has shut down.
	Post(fn func(cx *Context)) error

	// NewDeferred creates a deferred result that settles on the host thread.
	NewDeferred(cx *Context) (Deferred, error)
}

// Deferred is the host's promise analogue. Resolve and Reject must be
// called on the host thread, at most once between them.
type Deferred interface {
	// Value returns the host-visible handle for the pending result.
	Value() Value

	Resolve(cx *Context, v Value)
	Reject(cx *Context, errValue Value)
}
