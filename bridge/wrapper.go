package bridge

import (
	"fmt"

	"github.com/anooppoommen/libsignal-client/errors"
	"github.com/anooppoommen/libsignal-client/host"
)

// NativeHandleProperty is the well-known property name under which host
// wrapper objects carry their native payload.
const NativeHandleProperty = "_nativeHandle"

// typeName names N for error messages.
func typeName[N any]() string {
	return fmt.Sprintf("%T", *new(N))
}

// immutableBox embeds a read-only native value in a wrapper object.
type immutableBox[T any] struct {
	value *T
}

// Cell embeds a native value behind run-time borrow checking. Multiple
// host references can alias the same wrapper, and host code can reenter
// native operations while a borrow is still outstanding; the counter turns
// that aliasing into a detectable failure instead of undefined behavior.
//
// Cells are confined to the host thread (exclusive access is a
// synchronous-protocol-only feature), so the counter needs no
// synchronization.
type Cell[T any] struct {
	value   T
	borrows int32 // -1 while exclusively borrowed, else outstanding shared count
}

// NewCell moves value into a fresh cell.
func NewCell[T any](value T) *Cell[T] {
	return &Cell[T]{value: value}
}

func (c *Cell[T]) borrowShared() (*T, error) {
	if c.borrows < 0 {
		return nil, errors.BorrowConflict(typeName[T](), false)
	}
	c.borrows++
	return &c.value, nil
}

func (c *Cell[T]) borrowExclusive() (*T, error) {
	if c.borrows != 0 {
		return nil, errors.BorrowConflict(typeName[T](), true)
	}
	c.borrows = -1
	return &c.value, nil
}

func (c *Cell[T]) endShared() {
	if c.borrows <= 0 {
		panic("bridge: shared borrow released twice")
	}
	c.borrows--
}

func (c *Cell[T]) endExclusive() {
	if c.borrows != -1 {
		panic("bridge: exclusive borrow released twice")
	}
	c.borrows = 0
}

// Wrap builds a host wrapper object embedding value read-only.
func Wrap[T any](cx *host.Context, value *T) (host.Object, error) {
	obj, err := cx.Runtime().NewObject(cx)
	if err != nil {
		return nil, err
	}
	if err := obj.Set(cx, NativeHandleProperty, cx.Runtime().Box(cx, &immutableBox[T]{value: value})); err != nil {
		return nil, err
	}
	return obj, nil
}

// WrapMutable builds a host wrapper object embedding value behind a
// borrow-checked cell.
func WrapMutable[T any](cx *host.Context, value T) (host.Object, error) {
	obj, err := cx.Runtime().NewObject(cx)
	if err != nil {
		return nil, err
	}
	if err := obj.Set(cx, NativeHandleProperty, cx.Runtime().Box(cx, NewCell(value))); err != nil {
		return nil, err
	}
	return obj, nil
}

// unwrapPayload recovers the boxed payload from a wrapper object. All
// failures are type errors; nothing here creates roots or borrows.
func unwrapPayload[T any](cx *host.Context, v host.Value) (any, host.Object, error) {
	obj, ok := host.AsObject(v)
	if !ok {
		return nil, nil, errors.TypeMismatch(errors.PhaseConvert, v.Kind().String(), typeName[T]())
	}
	pv, err := obj.Get(cx, NativeHandleProperty)
	if err != nil {
		return nil, nil, err
	}
	boxed, ok := host.AsBoxed(pv)
	if !ok {
		return nil, nil, errors.TypeMismatch(errors.PhaseConvert, pv.Kind().String(), typeName[T]())
	}
	return boxed.Unbox(), obj, nil
}

type sharedStored[T any] struct {
	value *T
	cell  *Cell[T]
}

func (s *sharedStored[T]) Load() *T {
	return s.value
}

func (s *sharedStored[T]) Release(cx *host.Context) {
	if s.cell != nil {
		s.cell.endShared()
		s.cell = nil
	}
}

type handleArg[T any] struct{}

func (handleArg[T]) Borrow(cx *host.Context, v host.Value) (Stored[*T], error) {
	payload, _, err := unwrapPayload[T](cx, v)
	if err != nil {
		return nil, err
	}
	switch p := payload.(type) {
	case *immutableBox[T]:
		return &sharedStored[T]{value: p.value}, nil
	case *Cell[T]:
		ptr, err := p.borrowShared()
		if err != nil {
			return nil, err
		}
		return &sharedStored[T]{value: ptr, cell: p}, nil
	default:
		return nil, errors.TypeMismatch(errors.PhaseConvert, fmt.Sprintf("%T", payload), typeName[T]())
	}
}

// Handle is the shared immutable borrow of a wrapped native value. It
// accepts both wrapper flavors; cell-embedded values are borrow-counted.
func Handle[T any]() ArgType[*T] {
	return handleArg[T]{}
}

type exclusiveStored[T any] struct {
	value *T
	cell  *Cell[T]
}

func (s *exclusiveStored[T]) Load() *T {
	return s.value
}

func (s *exclusiveStored[T]) Release(cx *host.Context) {
	if s.cell != nil {
		s.cell.endExclusive()
		s.cell = nil
	}
}

type handleMutArg[T any] struct{}

func (handleMutArg[T]) Borrow(cx *host.Context, v host.Value) (Stored[*T], error) {
	payload, _, err := unwrapPayload[T](cx, v)
	if err != nil {
		return nil, err
	}
	cell, ok := payload.(*Cell[T])
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseConvert, fmt.Sprintf("%T", payload), typeName[T]())
	}
	ptr, err := cell.borrowExclusive()
	if err != nil {
		return nil, err
	}
	return &exclusiveStored[T]{value: ptr, cell: cell}, nil
}

// HandleMut is the exclusive borrow of a cell-embedded native value.
// Taking it while any other borrow is outstanding fails: that is a
// reentrancy bug being surfaced, not a recoverable condition. Exclusive
// access exists only in the synchronous protocol; cross-goroutine aliasing
// cannot be detected by a counter.
func HandleMut[T any]() ArgType[*T] {
	return handleMutArg[T]{}
}

// persistentHandle is an owned root over a wrapper object plus a validated
// pointer to its embedded value. The pointer stays valid off the host
// thread because the root keeps the wrapper, and through it the payload,
// alive until Finalize.
type persistentHandle[T any] struct {
	root      *host.Root
	value     *T
	site      string
	finalized bool
}

func (p *persistentHandle[T]) Load() *T {
	return p.value
}

func (p *persistentHandle[T]) Finalize(cx *host.Context) {
	if p.finalized {
		panic("bridge: persistent handle finalized twice")
	}
	p.finalized = true
	clearLeakCheck(p)
	p.root.Release(cx)
	p.value = nil
}

type handleAsyncArg[T any] struct{}

func (handleAsyncArg[T]) Save(cx *host.Context, v host.Value) (Persisted[*T], error) {
	payload, obj, err := unwrapPayload[T](cx, v)
	if err != nil {
		return nil, err
	}
	box, ok := payload.(*immutableBox[T])
	if !ok {
		// Cell payloads are shared-mutable; the asynchronous protocol
		// cannot borrow-check across goroutines, so they are rejected
		// outright.
		return nil, errors.TypeMismatch(errors.PhaseConvert, fmt.Sprintf("%T", payload), typeName[T]())
	}

	// All fallible operations are done; only now create the root, so a
	// failed conversion never leaves a root needing cleanup.
	p := &persistentHandle[T]{
		root:  cx.Runtime().Root(cx, obj),
		value: box.value,
		site:  callerSite(),
	}
	armLeakCheck(p, p.site, func(ph *persistentHandle[T]) bool { return ph.finalized })
	return p, nil
}

// HandleAsync is the persistent shared borrow of a wrapped native value:
// it roots the wrapper object and holds a validated pointer to the
// embedded value until finalized.
func HandleAsync[T any]() AsyncArgType[*T] {
	return handleAsyncArg[T]{}
}

type wrappedResult[T any] struct{}

func (wrappedResult[T]) Convert(cx *host.Context, native *T) (host.Value, error) {
	return Wrap(cx, native)
}

// Wrapped converts a native value into a read-only wrapper object.
func Wrapped[T any]() ResultType[*T] {
	return wrappedResult[T]{}
}

type wrappedMutableResult[T any] struct{}

func (wrappedMutableResult[T]) Convert(cx *host.Context, native T) (host.Value, error) {
	return WrapMutable(cx, native)
}

// WrappedMutable moves a native value into a borrow-checked wrapper
// object.
func WrappedMutable[T any]() ResultType[T] {
	return wrappedMutableResult[T]{}
}
