// Package bridge implements the conversion and lifetime-bridging protocol
// between native Go values and a garbage-collected host runtime.
//
// # Conversion Contracts
//
// Every argument position of a bridged function implements one of two
// contracts, and every result position implements the result contract:
//
//	ArgType[N]       Borrow(cx, v) → Stored[N]      synchronous calls
//	AsyncArgType[N]  Save(cx, v)   → Persisted[N]   deferred calls
//	ResultType[N]    Convert(cx, native) → Value    both
//
// Stored values live for one host call: Load them (exactly once for
// move-once storage), then Release them at scope exit. Persisted values
// outlive the call: they are self-contained, safe to hand to one worker
// goroutine, and must be finalized exactly once back on the host context.
//
// # Use Site
//
// The synchronous protocol, spelled out:
//
//	hv, err := bridge.Call(cx, bridge.Str{}, func(s *bridge.Scope) (string, error) {
//	    name, err := bridge.Borrow(s, bridge.Arg[string](bridge.Str{}), args[0])
//	    if err != nil {
//	        return "", err
//	    }
//	    return greet(name.Load()), nil
//	})
//
// The asynchronous protocol:
//
//	call := bridge.NewAsyncCall(cx)
//	defer call.Close()
//	data, err := bridge.SaveArg[[]byte](call, bridge.Bytes{}, args[0])
//	if err != nil {
//	    return nil, err
//	}
//	return bridge.RunAsync(call, bridge.BufferResult{}, func() ([]byte, error) {
//	    return digest(data.Load()), nil
//	})
//
// RunAsync persists nothing further: it runs the work on a worker
// goroutine, hops back to the host context, finalizes every persisted
// argument exactly once (on the error path too), and only then settles the
// deferred result.
//
// # Buffer Aliasing
//
// Byte buffers cross the boundary without copying. The guard against the
// host mutating a buffer mid-use is a checksum taken at borrow/save time
// and re-verified at release/finalize time: a mismatch logs an error and
// continues, because mutation-during-use is a caller bug to surface, not a
// memory-safety violation (the allocation itself is pinned by the borrow
// or the root). The checksum covers the first 1024 bytes unless the bridge
// logger has debug enabled, in which case it covers the whole buffer.
// WithAsyncBufferCopy trades the zero-copy optimization for an owned copy
// on the asynchronous path.
//
// # Opaque Handles
//
// Native values travel as host wrapper objects carrying the value under
// the "_nativeHandle" property. Shared borrows are unchecked reads;
// exclusive borrows go through a run-time borrow-checked cell so that a
// reentrant host call taking a second exclusive borrow fails instead of
// aliasing. Persistent handles validate the wrapper before rooting it, so
// a failed conversion never leaves a half-created root behind.
//
// # Error Mapping
//
// Native errors become host exceptions on the host context only. A small
// set of well-known categories construct dedicated exception classes from
// the table installed by RegisterErrorClasses; everything else (including
// any failure of that construction itself, which is logged and swallowed)
// degrades to a generic Error carrying the native error's string form.
package bridge
