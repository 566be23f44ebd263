package bridge

import (
	"github.com/anooppoommen/libsignal-client/host"
)

type releaser interface {
	Release(cx *host.Context)
}

// Scope collects the borrowed storage of one synchronous call and releases
// it, in reverse order, when the call ends. Conversion is all-or-nothing:
// a failed borrow surfaces before any stored value is loaded, and Close
// still releases whatever was borrowed up to that point.
type Scope struct {
	cx     *host.Context
	stored []releaser
}

// NewScope opens a scope for one synchronous call.
func NewScope(cx *host.Context) *Scope {
	return &Scope{cx: cx}
}

// Context returns the host context the scope is bound to.
func (s *Scope) Context() *host.Context {
	return s.cx
}

// Close releases all borrowed storage. Idempotent: a second call finds
// nothing left to release.
func (s *Scope) Close() {
	for i := len(s.stored) - 1; i >= 0; i-- {
		s.stored[i].Release(s.cx)
	}
	s.stored = nil
}

// Borrow converts one argument into scope-bound storage.
func Borrow[N any](s *Scope, t ArgType[N], v host.Value) (Stored[N], error) {
	stored, err := t.Borrow(s.cx, v)
	if err != nil {
		return nil, err
	}
	s.stored = append(s.stored, stored)
	return stored, nil
}

// Call runs a synchronous bridged function: it opens a scope, runs fn,
// releases all borrows, and converts the native result (or maps the native
// error to a host exception) on the host context before returning. The
// scope is closed even when fn panics, so a borrow never outlives its call
// on the unwind path either.
func Call[N any](cx *host.Context, result ResultType[N], fn func(s *Scope) (N, error)) (host.Value, error) {
	s := NewScope(cx)
	defer s.Close()
	native, err := fn(s)
	s.Close()
	if err != nil {
		return nil, ToException(cx, err)
	}
	hv, err := result.Convert(cx, native)
	if err != nil {
		return nil, ToException(cx, err)
	}
	return hv, nil
}
