package bridge

import (
	"testing"

	"github.com/anooppoommen/libsignal-client/errors"
	"github.com/anooppoommen/libsignal-client/host"
	"github.com/anooppoommen/libsignal-client/host/hosttest"
)

func TestOptional_NullIsAbsence(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	arg := Optional(Arg[uint32](U32{}))
	stored, err := arg.Borrow(cx, rt.Null())
	if err != nil {
		t.Fatalf("null borrow: %v", err)
	}
	opt := stored.Load()
	if opt.Valid {
		t.Fatal("Expected absence for null")
	}
	stored.Release(cx)
}

func TestOptional_PresentDelegates(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	arg := Optional(Arg[uint32](U32{}))
	stored, err := arg.Borrow(cx, hosttest.Number(7))
	if err != nil {
		t.Fatalf("present borrow: %v", err)
	}
	opt := stored.Load()
	if !opt.Valid || opt.Value != 7 {
		t.Fatalf("Expected Some(7), got %+v", opt)
	}
	stored.Release(cx)
}

func TestOptional_WrongTypeIsElementError(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	// Undefined is not null: it must satisfy the element contract.
	arg := Optional(Arg[uint32](U32{}))
	if _, err := arg.Borrow(cx, rt.Undefined()); !errors.IsTypeMismatch(err) {
		t.Fatalf("Expected the element's type error for undefined, got %v", err)
	}
	if _, err := arg.Borrow(cx, hosttest.Str("7")); !errors.IsTypeMismatch(err) {
		t.Fatalf("Expected the element's type error for string, got %v", err)
	}
}

func TestOptionalAsync_FinalizeDelegation(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	arg := OptionalAsync[[]byte](Bytes{})

	// Absence holds no roots; Finalize is a no-op.
	absent, err := arg.Save(cx, rt.Null())
	if err != nil {
		t.Fatalf("null save: %v", err)
	}
	absent.Finalize(cx)
	if rt.Roots.Len() != 0 {
		t.Fatalf("Expected no roots for absence, got %d", rt.Roots.Len())
	}

	// Presence roots the buffer until finalized.
	present, err := arg.Save(cx, rt.BufferOf([]byte{1, 2, 3}))
	if err != nil {
		t.Fatalf("present save: %v", err)
	}
	if rt.Roots.Len() != 1 {
		t.Fatalf("Expected 1 root for a present buffer, got %d", rt.Roots.Len())
	}
	opt := present.Load()
	if !opt.Valid || len(opt.Value) != 3 {
		t.Fatalf("Expected present bytes, got %+v", opt)
	}
	present.Finalize(cx)
	if rt.Roots.Len() != 0 {
		t.Fatalf("Expected roots released after finalize, got %d", rt.Roots.Len())
	}
}

func TestOptionalResult_AbsenceToNull(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	res := OptionalResult[uint32](U32{})

	hv, err := res.Convert(cx, None[uint32]())
	if err != nil {
		t.Fatalf("absence convert: %v", err)
	}
	if !host.IsNull(hv) {
		t.Fatalf("Expected null for absence, got kind %s", hv.Kind())
	}

	hv, err = res.Convert(cx, Some[uint32](9))
	if err != nil {
		t.Fatalf("present convert: %v", err)
	}
	if n, ok := hv.(host.Number); !ok || n.Float() != 9 {
		t.Fatalf("Expected 9, got %v", hv)
	}
}
