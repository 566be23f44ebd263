package bridge

import (
	"testing"

	"github.com/anooppoommen/libsignal-client/errors"
	"github.com/anooppoommen/libsignal-client/host"
	"github.com/anooppoommen/libsignal-client/host/hosttest"
)

type counter struct {
	n int
}

func TestWrap_RoundTrip(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	native := &counter{n: 3}
	obj, err := Wrap(cx, native)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}

	stored, err := Handle[counter]().Borrow(cx, obj)
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if got := stored.Load(); got != native {
		t.Fatalf("Expected the same native value back, got %p want %p", got, native)
	}
	stored.Release(cx)
}

func TestHandle_SharedBorrowsCoexist(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	obj, err := WrapMutable(cx, counter{n: 1})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}

	a, err := Handle[counter]().Borrow(cx, obj)
	if err != nil {
		t.Fatalf("first shared borrow: %v", err)
	}
	b, err := Handle[counter]().Borrow(cx, obj)
	if err != nil {
		t.Fatalf("second shared borrow: %v", err)
	}
	if a.Load() != b.Load() {
		t.Fatal("Shared borrows should see the same value")
	}
	a.Release(cx)
	b.Release(cx)
}

func TestHandleMut_ConflictsAreDeterministic(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	obj, err := WrapMutable(cx, counter{})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}

	shared, err := Handle[counter]().Borrow(cx, obj)
	if err != nil {
		t.Fatalf("shared borrow: %v", err)
	}

	// Exclusive while shared is outstanding
	if _, err := HandleMut[counter]().Borrow(cx, obj); !errors.IsBorrowConflict(err) {
		t.Fatalf("Expected borrow conflict, got %v", err)
	}
	shared.Release(cx)

	// Now it succeeds, and blocks everything else
	excl, err := HandleMut[counter]().Borrow(cx, obj)
	if err != nil {
		t.Fatalf("exclusive borrow after release: %v", err)
	}
	if _, err := Handle[counter]().Borrow(cx, obj); !errors.IsBorrowConflict(err) {
		t.Fatalf("Expected shared-over-exclusive conflict, got %v", err)
	}
	if _, err := HandleMut[counter]().Borrow(cx, obj); !errors.IsBorrowConflict(err) {
		t.Fatalf("Expected exclusive-over-exclusive conflict, got %v", err)
	}
	excl.Release(cx)

	// Fully released again
	again, err := Handle[counter]().Borrow(cx, obj)
	if err != nil {
		t.Fatalf("borrow after conflict resolved: %v", err)
	}
	again.Release(cx)
}

func TestHandleMut_RejectsImmutableWrapper(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	obj, err := Wrap(cx, &counter{})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if _, err := HandleMut[counter]().Borrow(cx, obj); !errors.IsTypeMismatch(err) {
		t.Fatalf("Expected type mismatch for immutable wrapper, got %v", err)
	}
}

func TestHandle_WrongPayloadType(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	obj, err := Wrap(cx, &counter{})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}

	type other struct{ s string }
	if _, err := Handle[other]().Borrow(cx, obj); !errors.IsTypeMismatch(err) {
		t.Fatalf("Expected type mismatch across native types, got %v", err)
	}

	// Plain objects without a payload fail the same way.
	plain, _ := rt.NewObject(cx)
	if _, err := Handle[counter]().Borrow(cx, plain); !errors.IsTypeMismatch(err) {
		t.Fatalf("Expected type mismatch for plain object, got %v", err)
	}
}

func TestHandleAsync_RootsAfterValidation(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	// A failed conversion must not leave a root behind.
	if _, err := HandleAsync[counter]().Save(cx, hosttest.Str("no")); err == nil {
		t.Fatal("Expected failure for non-object")
	}
	mutObj, err := WrapMutable(cx, counter{})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if _, err := HandleAsync[counter]().Save(cx, mutObj); !errors.IsTypeMismatch(err) {
		t.Fatalf("Cell payloads must be rejected for async use, got %v", err)
	}
	if rt.Roots.Len() != 0 {
		t.Fatalf("Failed conversions created %d roots", rt.Roots.Len())
	}

	// The success path holds exactly one root until finalize.
	native := &counter{n: 7}
	obj, err := Wrap(cx, native)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	p, err := HandleAsync[counter]().Save(cx, obj)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rt.Roots.Len() != 1 {
		t.Fatalf("Expected 1 root while persisted, got %d", rt.Roots.Len())
	}
	if p.Load() != native {
		t.Fatal("Persisted handle lost its native value")
	}
	p.Finalize(cx)
	if rt.Roots.Len() != 0 {
		t.Fatalf("Expected root released at finalize, got %d", rt.Roots.Len())
	}
}

func TestHandleAsync_DoubleFinalizePanics(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	obj, err := Wrap(cx, &counter{})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	p, err := HandleAsync[counter]().Save(cx, obj)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	p.Finalize(cx)

	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic on second finalize")
		}
	}()
	p.Finalize(cx)
}

func TestWrapped_Results(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	hv, err := Wrapped[counter]().Convert(cx, &counter{n: 5})
	if err != nil {
		t.Fatalf("wrapped convert: %v", err)
	}
	obj, ok := host.AsObject(hv)
	if !ok {
		t.Fatalf("Expected a wrapper object, got kind %s", hv.Kind())
	}
	stored, err := Handle[counter]().Borrow(cx, obj)
	if err != nil {
		t.Fatalf("borrow from result: %v", err)
	}
	if stored.Load().n != 5 {
		t.Fatal("Wrapped result lost its value")
	}
	stored.Release(cx)

	hv, err = WrappedMutable[counter]().Convert(cx, counter{n: 6})
	if err != nil {
		t.Fatalf("wrapped mutable convert: %v", err)
	}
	mstored, err := HandleMut[counter]().Borrow(cx, hv)
	if err != nil {
		t.Fatalf("exclusive borrow from result: %v", err)
	}
	mstored.Load().n++
	mstored.Release(cx)
}
