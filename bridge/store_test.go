package bridge

import (
	"testing"

	"github.com/anooppoommen/libsignal-client/errors"
	"github.com/anooppoommen/libsignal-client/host"
	"github.com/anooppoommen/libsignal-client/host/hosttest"
)

// sessionStore is a stand-in native capability bound to a host object.
type sessionStore struct {
	save host.Function
}

func bindSessionStore(cx *host.Context, obj host.Object) (*sessionStore, error) {
	v, err := obj.Get(cx, "saveSession")
	if err != nil {
		return nil, err
	}
	fn, ok := host.AsFunction(v)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseConvert, v.Kind().String(), "*sessionStore")
	}
	return &sessionStore{save: fn}, nil
}

func TestStoreArg_BindsAndRoots(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	obj := hosttest.NewObject()
	var called bool
	err := obj.Set(cx, "saveSession", &hosttest.Function{
		CallFn: func(cx *host.Context, this host.Value, args []host.Value) (host.Value, error) {
			called = true
			return rt.Undefined(), nil
		},
	})
	if err != nil {
		t.Fatalf("set: %v", err)
	}

	p, err := StoreArg(bindSessionStore).Save(cx, obj)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rt.Roots.Len() != 1 {
		t.Fatalf("Expected the store object rooted, got %d roots", rt.Roots.Len())
	}

	store := p.Load()
	if _, err := store.save.Call(cx, nil); err != nil {
		t.Fatalf("call: %v", err)
	}
	if !called {
		t.Fatal("Expected the host callback to run")
	}

	p.Finalize(cx)
	if rt.Roots.Len() != 0 {
		t.Fatalf("Expected root released at finalize, got %d", rt.Roots.Len())
	}
}

func TestStoreArg_ValidationFailureLeavesNoRoot(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	// Missing saveSession: bind fails before any root exists.
	if _, err := StoreArg(bindSessionStore).Save(cx, hosttest.NewObject()); !errors.IsTypeMismatch(err) {
		t.Fatalf("Expected type mismatch, got %v", err)
	}
	if _, err := StoreArg(bindSessionStore).Save(cx, hosttest.Number(1)); !errors.IsTypeMismatch(err) {
		t.Fatalf("Expected type mismatch for non-object, got %v", err)
	}
	if rt.Roots.Len() != 0 {
		t.Fatalf("Failed binds created %d roots", rt.Roots.Len())
	}
}
