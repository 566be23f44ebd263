// Package hostjs adapts a goja JavaScript engine to the host contract.
//
// goja is exactly the host model the bridge targets: garbage-collected,
// single-threaded, with object graphs the native side must not touch
// off-thread. The adapter owns the engine on a dedicated loop goroutine;
// every host operation runs there, reached through Post, and the *Context
// handed to posted work is the proof of being on the loop.
//
// Buffers are JS ArrayBuffers; their Bytes view aliases the engine's
// backing storage, which is what makes the bridge's zero-copy borrow (and
// its checksum-based mutation detector) meaningful here. Deferred results
// are JS promises. Rooting is reference-keeping: goja objects are ordinary
// Go values, so an entry in the roots registry is enough to pin one.
package hostjs
