// Package roots tracks live GC roots held by the native side of the bridge.
//
// Every persistent handle (rooted buffer, rooted wrapper object) registers
// here when created and releases its entry when finalized. The registry is
// bookkeeping, not ownership: it never keeps host objects alive by itself
// beyond holding a reference, and it never frees anything. What it buys is
// visibility: observers see every root come and go, tests can assert exact
// finalization counts, and Close logs a leak report naming the creation
// site of every root that was never released.
package roots
