package bridge

import "sync"

// options holds module-wide behavior switches. They are resolved once at
// module load, before any bridged call runs, so reads are not synchronized
// on the hot path.
type options struct {
	copyAsyncBuffers bool
	leakChecks       bool
}

var (
	optMu sync.Mutex
	opts  = options{
		leakChecks: true,
	}
)

// Option configures module-wide bridge behavior.
type Option func(*options)

// WithAsyncBufferCopy makes the asynchronous protocol copy host buffers
// into native-owned memory at save time instead of aliasing them. Stronger
// safety (no window for the host to mutate the bytes mid-use), one copy
// per call. The synchronous path always aliases; its borrow cannot outlive
// the call.
func WithAsyncBufferCopy() Option {
	return func(o *options) { o.copyAsyncBuffers = true }
}

// WithLeakChecks toggles the GC-based detector that flags persistent
// storage dropped without finalization. On by default.
func WithLeakChecks(on bool) Option {
	return func(o *options) { o.leakChecks = on }
}

// Configure applies options. Call once at module load.
func Configure(o ...Option) {
	optMu.Lock()
	defer optMu.Unlock()
	for _, fn := range o {
		fn(&opts)
	}
}

func copyAsyncBuffers() bool {
	optMu.Lock()
	defer optMu.Unlock()
	return opts.copyAsyncBuffers
}

func leakChecksEnabled() bool {
	optMu.Lock()
	defer optMu.Unlock()
	return opts.leakChecks
}
