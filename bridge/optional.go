package bridge

import (
	"github.com/anooppoommen/libsignal-client/host"
)

// Opt is a native value or its absence. The host's null maps to absence in
// both directions; absence is not a resource and finalizes as a no-op.
type Opt[N any] struct {
	Value N
	Valid bool
}

// Some wraps a present value.
func Some[N any](v N) Opt[N] {
	return Opt[N]{Value: v, Valid: true}
}

// None is the absent value.
func None[N any]() Opt[N] {
	return Opt[N]{}
}

type optionalStored[N any] struct {
	inner Stored[N]
}

func (s *optionalStored[N]) Load() Opt[N] {
	if s.inner == nil {
		return None[N]()
	}
	return Some(s.inner.Load())
}

func (s *optionalStored[N]) Release(cx *host.Context) {
	if s.inner != nil {
		s.inner.Release(cx)
	}
}

type optionalArg[N any] struct {
	elem ArgType[N]
}

func (a optionalArg[N]) Borrow(cx *host.Context, v host.Value) (Stored[Opt[N]], error) {
	if host.IsNull(v) {
		return &optionalStored[N]{}, nil
	}
	inner, err := a.elem.Borrow(cx, v)
	if err != nil {
		return nil, err
	}
	return &optionalStored[N]{inner: inner}, nil
}

// Optional lifts an element contract over "value or null". Null converts
// to absence; any other value must satisfy the element contract or the
// conversion fails with the element's type error.
func Optional[N any](elem ArgType[N]) ArgType[Opt[N]] {
	return optionalArg[N]{elem: elem}
}

type optionalPersisted[N any] struct {
	inner Persisted[N]
}

func (p *optionalPersisted[N]) Load() Opt[N] {
	if p.inner == nil {
		return None[N]()
	}
	return Some(p.inner.Load())
}

// Finalize finalizes the wrapped storage if a value is present. Absence
// holds no roots, so there is nothing to finalize.
func (p *optionalPersisted[N]) Finalize(cx *host.Context) {
	if p.inner != nil {
		p.inner.Finalize(cx)
	}
}

type optionalAsyncArg[N any] struct {
	elem AsyncArgType[N]
}

func (a optionalAsyncArg[N]) Save(cx *host.Context, v host.Value) (Persisted[Opt[N]], error) {
	if host.IsNull(v) {
		return &optionalPersisted[N]{}, nil
	}
	inner, err := a.elem.Save(cx, v)
	if err != nil {
		return nil, err
	}
	return &optionalPersisted[N]{inner: inner}, nil
}

// OptionalAsync is Optional for the asynchronous contract.
func OptionalAsync[N any](elem AsyncArgType[N]) AsyncArgType[Opt[N]] {
	return optionalAsyncArg[N]{elem: elem}
}

type optionalResult[N any] struct {
	elem ResultType[N]
}

func (r optionalResult[N]) Convert(cx *host.Context, native Opt[N]) (host.Value, error) {
	if !native.Valid {
		return cx.Runtime().Null(), nil
	}
	return r.elem.Convert(cx, native.Value)
}

// OptionalResult converts absence to null, delegating present values to
// the element contract.
func OptionalResult[N any](elem ResultType[N]) ResultType[Opt[N]] {
	return optionalResult[N]{elem: elem}
}
