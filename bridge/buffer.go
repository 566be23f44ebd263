package bridge

import (
	"fmt"
	"hash/fnv"
	"math"
	"runtime"

	"github.com/anooppoommen/libsignal-client/errors"
	"github.com/anooppoommen/libsignal-client/host"
)

// checksumLimit bounds how many bytes the integrity checksum covers. A
// cost/coverage trade-off, not a security mechanism: the checksum detects
// concurrent mutation after the fact, it does not prevent it.
const checksumLimit = 1024

// bufferChecksum hashes the first checksumLimit bytes of the buffer, or
// the whole buffer when debug logging is enabled.
func bufferChecksum(buf []byte) uint64 {
	h := fnv.New64a()
	if debugEnabled() || len(buf) < checksumLimit {
		h.Write(buf)
	} else {
		h.Write(buf[:checksumLimit])
	}
	return h.Sum64()
}

// assumedImmutableBuffer is a borrowed view of a host buffer plus a
// checksum, re-verified when the borrow ends.
//
// The host guarantees the buffer's allocation stays put while the buffer
// object is reachable from the originating call, so holding the byte view
// is safe. What is not guaranteed is that nobody mutates the bytes while
// we hold them, which is why we checksum.
type assumedImmutableBuffer struct {
	buf  []byte
	hash uint64
}

func (b *assumedImmutableBuffer) Load() []byte {
	return b.buf
}

// Release logs an error (but does not panic) if the buffer's contents
// have changed.
func (b *assumedImmutableBuffer) Release(cx *host.Context) {
	if b.hash != bufferChecksum(b.buf) {
		Logger().Error("buffer modified while in use")
	}
}

// Bytes borrows host buffers as native byte slices without copying.
// It implements both the synchronous and the asynchronous contract.
type Bytes struct{}

func (Bytes) Borrow(cx *host.Context, v host.Value) (Stored[[]byte], error) {
	hb, ok := hostBuffer(v)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseConvert, v.Kind().String(), "[]byte")
	}
	buf := hb.Bytes()
	return &assumedImmutableBuffer{buf: buf, hash: bufferChecksum(buf)}, nil
}

// persistentBuffer roots the host buffer object and snapshots its byte
// view once, on the host context. The view stays valid off the host
// thread because the root pins the backing allocation; the checksum is
// verified at finalize time to detect (not prevent) mutation in between.
// In copy mode there is no root: the bytes are native-owned.
type persistentBuffer struct {
	root      *host.Root
	buf       []byte
	hash      uint64
	site      string
	finalized bool
}

func (b *persistentBuffer) Load() []byte {
	return b.buf
}

func (b *persistentBuffer) Finalize(cx *host.Context) {
	if b.finalized {
		panic("bridge: persistent buffer finalized twice")
	}
	b.finalized = true
	clearLeakCheck(b)
	if b.root != nil {
		if b.hash != bufferChecksum(b.buf) {
			Logger().Error("buffer modified while in use")
		}
		b.root.Release(cx)
	}
	b.buf = nil
}

func (Bytes) Save(cx *host.Context, v host.Value) (Persisted[[]byte], error) {
	hb, ok := hostBuffer(v)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseConvert, v.Kind().String(), "[]byte")
	}

	p := &persistentBuffer{site: callerSite()}
	if copyAsyncBuffers() {
		p.buf = append([]byte(nil), hb.Bytes()...)
	} else {
		// Root after the downcast so a failed conversion never
		// creates a root needing cleanup.
		obj, _ := v.(host.Object)
		p.buf = hb.Bytes()
		p.hash = bufferChecksum(p.buf)
		p.root = rootBuffer(cx, hb, obj)
	}
	armLeakCheck(p, p.site, func(pb *persistentBuffer) bool { return pb.finalized })
	return p, nil
}

// hostBuffer accepts buffer values directly.
func hostBuffer(v host.Value) (host.Buffer, bool) {
	if v.Kind() != host.KindBuffer {
		return nil, false
	}
	return host.AsBuffer(v)
}

// rootBuffer pins the buffer's host object. Buffers that are not also
// objects (the reference host's, for one) are rooted through a wrapper the
// runtime provides for exactly this purpose.
func rootBuffer(cx *host.Context, hb host.Buffer, obj host.Object) *host.Root {
	if obj != nil {
		return cx.Runtime().Root(cx, obj)
	}
	return cx.Runtime().Root(cx, bufferOwner{hb})
}

// bufferOwner adapts a bare buffer value into the Object shape Root wants.
// It exists only to hold the reference.
type bufferOwner struct {
	host.Buffer
}

func (bufferOwner) Get(cx *host.Context, name string) (host.Value, error) {
	return cx.Runtime().Undefined(), nil
}

func (bufferOwner) Set(cx *host.Context, name string, v host.Value) error {
	return errors.TypeMismatch(errors.PhaseHost, "buffer", "object")
}

// BufferResult converts native bytes into a fresh host buffer. Lengths
// beyond the host's 2^32-1 buffer cap fail instead of truncating.
type BufferResult struct{}

func (BufferResult) Convert(cx *host.Context, native []byte) (host.Value, error) {
	if len(native) > math.MaxUint32 {
		return nil, errors.TooLarge(errors.PhaseResult, len(native), "[]byte")
	}
	hb, err := cx.Runtime().NewBuffer(cx, len(native))
	if err != nil {
		return nil, err
	}
	copy(hb.Bytes(), native)
	return hb, nil
}

// callerSite names the call site that created a persistent storage value,
// for leak reports.
func callerSite() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}
