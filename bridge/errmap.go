package bridge

import (
	goerrors "errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/anooppoommen/libsignal-client/errors"
	"github.com/anooppoommen/libsignal-client/host"
)

// ErrorsProperty is the module-object property holding the host's
// exception-class table.
const ErrorsProperty = "Errors"

// RegisterErrorClasses installs the host-side table of exception
// constructors on the module object. Call once at module load; all error
// mapping expects the table to be present before any fallible native call
// runs.
func RegisterErrorClasses(cx *host.Context, classes host.Object) error {
	return cx.Module().Set(cx, ErrorsProperty, classes)
}

// IdentityMismatch is implemented by native errors that carry the name of
// a conflicting identity. They surface as the host's
// UntrustedIdentityError, constructed with that name.
type IdentityMismatch interface {
	error
	ConflictingIdentity() string
}

// SelfSend is implemented by native errors for messages addressed to the
// sender. They surface as the host's SealedSenderSelfSend exception.
type SelfSend interface {
	error
	IsSelfSend() bool
}

// CallbackError wraps a failure reported by a host callback so the native
// side can carry it as an ordinary error.
type CallbackError struct {
	Func    string
	Message string
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("callback error in %s: %s", e.Func, e.Message)
}

// WrapCallbackError builds a CallbackError for the named host function.
func WrapCallbackError(fn, message string) error {
	return &CallbackError{Func: fn, Message: message}
}

// ToException maps a native error to a host exception. Must run on the
// host context: exception classes are host objects.
//
// Well-known categories get dedicated exception classes looked up in the
// registered table; if lookup or construction fails for any reason, a
// warning is logged (never propagated) and the error degrades to a generic
// exception carrying its string form. Every other error goes straight to
// the generic fallback, except bridge conversion errors, which carry their
// own host class (RangeError, TypeError).
func ToException(cx *host.Context, err error) *host.Exception {
	if exc, ok := err.(*host.Exception); ok {
		return exc
	}

	var bridgeErr *errors.Error
	if goerrors.As(err, &bridgeErr) {
		msg := bridgeErr.Error()
		return host.Throw(cx.Runtime().NewError(cx, string(bridgeErr.HostClass()), msg), msg)
	}

	var mismatch IdentityMismatch
	if goerrors.As(err, &mismatch) {
		name := mismatch.ConflictingIdentity()
		if v := newRegisteredError(cx, "UntrustedIdentityError", cx.Runtime().String(name)); v != nil {
			return host.Throw(v, err.Error())
		}
	}

	var selfSend SelfSend
	if goerrors.As(err, &selfSend) && selfSend.IsSelfSend() {
		if v := newRegisteredError(cx, "SealedSenderSelfSend", cx.Runtime().String(err.Error())); v != nil {
			return host.Throw(v, err.Error())
		}
	}

	msg := err.Error()
	return host.Throw(cx.Runtime().NewError(cx, string(errors.ClassError), msg), msg)
}

// newRegisteredError constructs a host exception from the registered class
// table. Any failure (missing table, missing class, construction throwing)
// logs a warning and returns nil so the caller falls back to the generic
// exception; a secondary mapping failure never masks the primary error.
func newRegisteredError(cx *host.Context, name string, args ...host.Value) host.Value {
	table, err := cx.Module().Get(cx, ErrorsProperty)
	if err != nil {
		warnConstructFailed(name, err)
		return nil
	}
	tableObj, ok := host.AsObject(table)
	if !ok {
		warnConstructFailed(name, errors.NotRegistered("exception class table"))
		return nil
	}
	class, err := tableObj.Get(cx, name)
	if err != nil {
		warnConstructFailed(name, err)
		return nil
	}
	ctor, ok := host.AsFunction(class)
	if !ok {
		warnConstructFailed(name, errors.NotRegistered(name))
		return nil
	}
	instance, err := ctor.Construct(cx, args...)
	if err != nil {
		warnConstructFailed(name, err)
		return nil
	}
	return instance
}

func warnConstructFailed(name string, err error) {
	Logger().Warn("could not construct host exception",
		zap.String("class", name),
		zap.Error(err))
}
