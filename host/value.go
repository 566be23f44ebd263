package host

// Kind is the host-side type tag of a Value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindBuffer
	KindObject
	KindFunction
	KindBoxed
)

// String returns the kind's host-facing name.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBuffer:
		return "buffer"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindBoxed:
		return "boxed"
	default:
		return "unknown"
	}
}

// Value is any host-runtime value crossing the boundary.
type Value interface {
	Kind() Kind
}

// Boolean is a host boolean value.
type Boolean interface {
	Value
	Bool() bool
}

// Number is a host numeric value. Hosts represent all numbers as float64,
// which is why 64-bit integers are bounded by 2^53-1 at the boundary.
type Number interface {
	Value
	Float() float64
}

// String is a host string value.
type String interface {
	Value
	Text() string
}

// Buffer is a host-owned byte buffer. Bytes returns a view aliasing the
// host's backing storage, not a copy; the host guarantees the allocation
// stays put while the buffer is referenced, but not that nobody mutates it.
type Buffer interface {
	Value
	Bytes() []byte
	Len() int
}

// Object is a host object with named properties.
type Object interface {
	Value
	Get(cx *Context, name string) (Value, error)
	Set(cx *Context, name string, v Value) error
}

// Function is a callable host value.
type Function interface {
	Value
	Call(cx *Context, this Value, args ...Value) (Value, error)
	Construct(cx *Context, args ...Value) (Value, error)
}

// Boxed is a host value carrying an opaque native payload. It is how
// wrapper objects embed native-owned values.
type Boxed interface {
	Value
	Unbox() any
}

// IsNull reports whether v is the host's null value.
func IsNull(v Value) bool {
	return v != nil && v.Kind() == KindNull
}

// IsUndefined reports whether v is the host's undefined value.
func IsUndefined(v Value) bool {
	return v != nil && v.Kind() == KindUndefined
}

// AsObject downcasts v to an Object.
func AsObject(v Value) (Object, bool) {
	o, ok := v.(Object)
	return o, ok && v.Kind() == KindObject
}

// AsBuffer downcasts v to a Buffer.
func AsBuffer(v Value) (Buffer, bool) {
	b, ok := v.(Buffer)
	return b, ok
}

// AsFunction downcasts v to a Function.
func AsFunction(v Value) (Function, bool) {
	f, ok := v.(Function)
	return f, ok
}

// AsBoxed downcasts v to a Boxed payload carrier.
func AsBoxed(v Value) (Boxed, bool) {
	b, ok := v.(Boxed)
	return b, ok
}
