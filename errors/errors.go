package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the boundary crossing the error occurred
type Phase string

const (
	PhaseConvert  Phase = "convert"  // host to native argument conversion
	PhaseResult   Phase = "result"   // native to host result conversion
	PhaseFinalize Phase = "finalize" // persistent storage finalization
	PhaseCall     Phase = "call"     // native call execution
	PhaseHost     Phase = "host"     // host runtime operations
)

// Kind categorizes the error
type Kind string

const (
	KindRange          Kind = "range"           // value outside the target type's range
	KindTypeMismatch   Kind = "type_mismatch"   // host value has the wrong type tag
	KindBorrowConflict Kind = "borrow_conflict" // overlapping exclusive access
	KindAlreadyLoaded  Kind = "already_loaded"  // move-once storage loaded twice
	KindLeak           Kind = "leak"            // persistent storage dropped unfinalized
	KindNotRegistered  Kind = "not_registered"  // exception class table missing
	KindTooLarge       Kind = "too_large"       // value exceeds host representable size
	KindClosed         Kind = "closed"          // host loop or registry already closed
	KindCallback       Kind = "callback"        // host callback reported a failure
)

// HostClass names the host exception class a bridge error surfaces as.
type HostClass string

const (
	ClassError      HostClass = "Error"
	ClassTypeError  HostClass = "TypeError"
	ClassRangeError HostClass = "RangeError"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	HostType   string
	NativeType string
	Detail     string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.HostType != "" || e.NativeType != "" {
		b.WriteString(": ")
		if e.HostType != "" && e.NativeType != "" {
			b.WriteString("host type ")
			b.WriteString(e.HostType)
			b.WriteString(", native type ")
			b.WriteString(e.NativeType)
		} else if e.HostType != "" {
			b.WriteString("host type ")
			b.WriteString(e.HostType)
		} else {
			b.WriteString("native type ")
			b.WriteString(e.NativeType)
		}
	}

	if e.Detail != "" {
		if e.HostType != "" || e.NativeType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// HostClass reports the host exception class for this error.
// Range errors surface as RangeError, type mismatches as TypeError,
// everything else as a plain Error.
func (e *Error) HostClass() HostClass {
	switch e.Kind {
	case KindRange, KindTooLarge:
		return ClassRangeError
	case KindTypeMismatch:
		return ClassTypeError
	default:
		return ClassError
	}
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// HostType sets the host type name
func (b *Builder) HostType(t string) *Builder {
	b.err.HostType = t
	return b
}

// NativeType sets the native type name
func (b *Builder) NativeType(t string) *Builder {
	b.err.NativeType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Range creates a range error naming the offending value and target type
func Range(phase Phase, value any, nativeType string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindRange,
		Value:      value,
		NativeType: nativeType,
		Detail:     fmt.Sprintf("cannot convert %v to %s", value, nativeType),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, hostType, nativeType string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindTypeMismatch,
		HostType:   hostType,
		NativeType: nativeType,
	}
}

// BorrowConflict creates an overlapping-borrow error
func BorrowConflict(nativeType string, exclusive bool) *Error {
	mode := "shared"
	if exclusive {
		mode = "exclusive"
	}
	return &Error{
		Phase:      PhaseConvert,
		Kind:       KindBorrowConflict,
		NativeType: nativeType,
		Detail:     fmt.Sprintf("%s borrow while another borrow is outstanding", mode),
	}
}

// TooLarge creates an error for values exceeding the host's representable size
func TooLarge(phase Phase, size int, nativeType string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindTooLarge,
		NativeType: nativeType,
		Detail:     fmt.Sprintf("%d bytes is too large to return to the host", size),
	}
}

// NotRegistered creates an error for a missing registration
func NotRegistered(what string) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindNotRegistered,
		Detail: fmt.Sprintf("%s is not registered", what),
	}
}

// Closed creates an error for operations on a closed loop or registry
func Closed(what string) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// IsRange reports whether err is a range error in any phase
func IsRange(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindRange
}

// IsTypeMismatch reports whether err is a type mismatch in any phase
func IsTypeMismatch(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindTypeMismatch
}

// IsBorrowConflict reports whether err is an overlapping-borrow failure
func IsBorrowConflict(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindBorrowConflict
}
