package host_test

import (
	"testing"

	"github.com/anooppoommen/libsignal-client/host"
	"github.com/anooppoommen/libsignal-client/host/hosttest"
)

func TestRoot_Lifecycle(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	obj, err := rt.NewObject(cx)
	if err != nil {
		t.Fatalf("new object: %v", err)
	}

	root := rt.Root(cx, obj)
	if root.Released() {
		t.Fatal("Fresh root should not be released")
	}
	if root.Object() != obj {
		t.Fatal("Root lost its object")
	}
	if rt.Roots.Len() != 1 {
		t.Fatalf("Expected 1 tracked root, got %d", rt.Roots.Len())
	}

	root.Release(cx)
	if !root.Released() {
		t.Fatal("Expected released state")
	}
	if rt.Roots.Len() != 0 {
		t.Fatalf("Expected 0 tracked roots, got %d", rt.Roots.Len())
	}
}

func TestRoot_UseAfterReleasePanics(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	obj, _ := rt.NewObject(cx)
	root := rt.Root(cx, obj)
	root.Release(cx)

	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic on Object after release")
		}
	}()
	_ = root.Object()
}

func TestRoot_DoubleReleasePanics(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	obj, _ := rt.NewObject(cx)
	root := rt.Root(cx, obj)
	root.Release(cx)

	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic on second release")
		}
	}()
	root.Release(cx)
}

func TestContext_Accessors(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	if cx.Runtime() != host.Runtime(rt) {
		t.Fatal("Context lost its runtime")
	}
	if cx.Module() == nil {
		t.Fatal("Context lost its module object")
	}
}
