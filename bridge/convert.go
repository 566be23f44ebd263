package bridge

import (
	"github.com/anooppoommen/libsignal-client/host"
)

// Stored is transient storage for one converted argument. It lives for the
// duration of a single host call and may alias host memory.
type Stored[N any] interface {
	// Load produces the native value. Move-once storage panics on a
	// second load.
	Load() N

	// Release ends the borrow. Runs on the host context at scope exit,
	// whether or not Load was called.
	Release(cx *host.Context)
}

// Persisted is storage that outlives its originating call. It never
// borrows from the call's stack frame, is safe to hand to one worker
// goroutine, and must be finalized exactly once on the host context before
// it is discarded. Finalizing twice panics; dropping without finalizing is
// flagged by the leak checker.
type Persisted[N any] interface {
	// Load produces the native value. May run off the host thread.
	// Move-once storage panics on a second load.
	Load() N

	// Finalize releases any roots the storage holds and verifies its
	// safety invariants. Host context only.
	Finalize(cx *host.Context)
}

// ArgType converts a host value into native form for a synchronous call.
type ArgType[N any] interface {
	Borrow(cx *host.Context, v host.Value) (Stored[N], error)
}

// AsyncArgType converts a host value into self-contained storage for a
// deferred call.
type AsyncArgType[N any] interface {
	Save(cx *host.Context, v host.Value) (Persisted[N], error)
}

// ResultType converts a native value to its host form. Conversion happens
// on the host context only, immediately before the call returns or the
// deferred result settles.
type ResultType[N any] interface {
	Convert(cx *host.Context, native N) (host.Value, error)
}

// SimpleType is the easy case: the native value converts directly from the
// host value with no separate storage. Arg and AsyncArg lift a SimpleType
// into the full contracts via move-once storage.
type SimpleType[N any] interface {
	ConvertFrom(cx *host.Context, v host.Value) (N, error)
}

// once is move-once storage. It satisfies both Stored and Persisted: plain
// converted values hold no roots, so Release and Finalize have nothing to
// do beyond enforcing single use.
type once[N any] struct {
	value  N
	loaded bool
}

func (o *once[N]) Load() N {
	if o.loaded {
		panic("bridge: stored argument loaded more than once")
	}
	o.loaded = true
	return o.value
}

func (o *once[N]) Release(cx *host.Context) {}

func (o *once[N]) Finalize(cx *host.Context) {}

type simpleArg[N any] struct {
	st SimpleType[N]
}

func (a simpleArg[N]) Borrow(cx *host.Context, v host.Value) (Stored[N], error) {
	native, err := a.st.ConvertFrom(cx, v)
	if err != nil {
		return nil, err
	}
	return &once[N]{value: native}, nil
}

func (a simpleArg[N]) Save(cx *host.Context, v host.Value) (Persisted[N], error) {
	native, err := a.st.ConvertFrom(cx, v)
	if err != nil {
		return nil, err
	}
	return &once[N]{value: native}, nil
}

// Arg lifts a SimpleType into the synchronous contract.
func Arg[N any](st SimpleType[N]) ArgType[N] {
	return simpleArg[N]{st: st}
}

// AsyncArg lifts a SimpleType into the asynchronous contract.
func AsyncArg[N any](st SimpleType[N]) AsyncArgType[N] {
	return simpleArg[N]{st: st}
}
