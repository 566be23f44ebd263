package bridge

import (
	"fmt"

	"github.com/anooppoommen/libsignal-client/errors"
	"github.com/anooppoommen/libsignal-client/host"
)

// persistentStore roots a host-implemented store object and carries the
// native capability bound to it.
type persistentStore[S any] struct {
	root      *host.Root
	store     S
	site      string
	finalized bool
}

func (p *persistentStore[S]) Load() S {
	return p.store
}

func (p *persistentStore[S]) Finalize(cx *host.Context) {
	if p.finalized {
		panic("bridge: persistent store finalized twice")
	}
	p.finalized = true
	clearLeakCheck(p)
	p.root.Release(cx)
}

type storeArg[S any] struct {
	bind func(cx *host.Context, obj host.Object) (S, error)
}

func (a storeArg[S]) Save(cx *host.Context, v host.Value) (Persisted[S], error) {
	obj, ok := host.AsObject(v)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseConvert, v.Kind().String(), fmt.Sprintf("%T", *new(S)))
	}
	store, err := a.bind(cx, obj)
	if err != nil {
		return nil, err
	}
	// Bind before rooting: a store object that fails validation must not
	// leave a root behind.
	p := &persistentStore[S]{
		root:  cx.Runtime().Root(cx, obj),
		store: store,
		site:  callerSite(),
	}
	armLeakCheck(p, p.site, func(ps *persistentStore[S]) bool { return ps.finalized })
	return p, nil
}

// StoreArg adapts host-implemented store objects into the asynchronous
// contract. One generic implementation covers the whole family of store
// capabilities: bind validates the host object and wraps it into the
// native capability interface S, and the wrapper object stays rooted until
// the deferred call finalizes.
//
// The bound capability's methods are the store implementation's concern;
// implementations that call back into the host must hop through
// Runtime.Post themselves.
func StoreArg[S any](bind func(cx *host.Context, obj host.Object) (S, error)) AsyncArgType[S] {
	return storeArg[S]{bind: bind}
}
