package bridge

import (
	"runtime"

	"go.uber.org/zap"
)

// armLeakCheck installs a GC finalizer that flags persistent storage
// collected without being finalized. Go has no linear types, so "forgot to
// finalize" cannot be made unrepresentable; this makes it fail loudly
// instead of silently leaking a root.
//
// The finalizer must not touch host memory (it runs on the GC's
// goroutine), so it only logs. clearLeakCheck disarms it on the normal
// path.
func armLeakCheck[T any](p *T, site string, finalized func(*T) bool) {
	if !leakChecksEnabled() {
		return
	}
	runtime.SetFinalizer(p, func(pp *T) {
		if !finalized(pp) {
			Logger().Error("persistent storage dropped without finalize",
				zap.String("site", site))
		}
	})
}

func clearLeakCheck[T any](p *T) {
	if !leakChecksEnabled() {
		return
	}
	runtime.SetFinalizer(p, nil)
}
