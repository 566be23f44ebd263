// Package libsignalclient provides the Go marshalling layer that bridges a
// natively-owned protocol library into a garbage-collected, single-threaded
// host runtime.
//
// The library converts scalars, byte buffers, optional values, opaque native
// handles and error conditions in both directions across the host boundary,
// while preserving lifetime invariants that neither side's type system can
// express on its own.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	libsignal-client/    Root package with the library overview
//	├── host/            Host runtime contract: values, contexts, roots, deferreds
//	│   └── hosttest/    In-memory reference host used by tests
//	├── hostjs/          goja-backed JavaScript host adapter with event loop
//	├── bridge/          Conversion protocols, buffer guard, handle bridge,
//	│                    error-to-exception mapping
//	├── errors/          Structured error types for boundary failures
//	├── roots/           Registry of live GC roots with leak reporting
//	└── cmd/bridge-repl/ Interactive demo REPL over the JS host
//
// # Quick Start
//
// Bridge a native function into a JS host:
//
//	rt, err := hostjs.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	rt.RegisterFunc("add", func(cx *host.Context, args []host.Value) (host.Value, error) {
//	    return bridge.Call(cx, bridge.U32{}, func(s *bridge.Scope) (uint32, error) {
//	        a, err := bridge.Borrow(s, bridge.Arg[uint32](bridge.U32{}), args[0])
//	        if err != nil {
//	            return 0, err
//	        }
//	        b, err := bridge.Borrow(s, bridge.Arg[uint32](bridge.U32{}), args[1])
//	        if err != nil {
//	            return 0, err
//	        }
//	        return a.Load() + b.Load(), nil
//	    })
//	})
//
// # Conversion Contracts
//
// Each argument position implements one of two protocols:
//
//   - Synchronous: Borrow → Load (at most once for move-once storage) →
//     Release at scope exit. Storage may alias host memory; it never
//     outlives the originating call.
//   - Asynchronous: Save → transfer to a worker goroutine → Load → Finalize
//     exactly once back on the host context. Storage is self-contained and
//     roots any host objects it captures.
//
// Results always convert on the host context, immediately before the call
// returns or the deferred result settles.
//
// # Memory Model
//
// The host runtime is garbage-collected and single-threaded; native work may
// run on background goroutines. Host objects are never touched off the host
// context except through two sanctioned escape hatches: checksummed byte
// views of rooted buffers, and validated pointers to native payloads whose
// wrapper objects are rooted. Both are best-effort-verified at finalize time
// rather than enforced, a deliberate trade-off that avoids copying on every
// call. See the bridge package documentation for details.
//
// # Thread Safety
//
// host.Context values are confined to the host loop goroutine. Persisted
// storage produced by the asynchronous protocol is safe to move to one
// worker goroutine at a time. Everything else follows the usual rule:
// values are not safe for concurrent use unless documented otherwise.
package libsignalclient
