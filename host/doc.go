// Package host defines the contract a host runtime must satisfy to receive
// bridged native functions.
//
// The host runtime is garbage-collected and executes single-threaded (or
// cooperatively scheduled) code. This package does not implement a runtime;
// it names the operations the bridge needs from one:
//
//   - Value construction and inspection (Runtime, Value, Object, Buffer,
//     Function, Boxed)
//   - A proof-of-host-thread token (Context)
//   - A collection barrier for host objects (Root)
//   - A way to schedule work back onto the host thread (Runtime.Post)
//   - A deferred result that settles on the host thread (Deferred)
//
// Two adapters ship with the library: hosttest (an in-memory reference host
// for tests) and hostjs (a goja-backed JavaScript engine).
//
// # Context confinement
//
// A *Context is handed to code running on the host loop goroutine and must
// not be retained past the call it was handed to, nor used from any other
// goroutine. Every operation that touches host memory takes a *Context
// parameter for exactly this reason: possession of one is the proof that the
// caller is on the host thread.
package host
