package bridge

import (
	"go.uber.org/zap"

	"github.com/anooppoommen/libsignal-client/host"
)

type finalizer interface {
	Finalize(cx *host.Context)
}

// AsyncCall carries the persisted arguments of one deferred native call
// through its life cycle: persist on the host context, run on a worker
// goroutine, hop back to the host context, finalize every persisted
// storage exactly once, then settle the deferred result. There is no
// cancellation; the only terminal paths are success and failure, and both
// finalize everything.
type AsyncCall struct {
	cx        *host.Context
	persisted []finalizer
	launched  bool
}

// NewAsyncCall opens an asynchronous call on the host context.
func NewAsyncCall(cx *host.Context) *AsyncCall {
	return &AsyncCall{cx: cx}
}

// Context returns the host context the call was opened on. Only valid
// before RunAsync; the worker must not touch it.
func (c *AsyncCall) Context() *host.Context {
	return c.cx
}

// SaveArg persists one argument. If conversion fails, every argument
// persisted so far is finalized immediately (still on the host context)
// and the call must not proceed: arguments convert all-or-nothing.
func SaveArg[N any](c *AsyncCall, t AsyncArgType[N], v host.Value) (Persisted[N], error) {
	if c.launched {
		panic("bridge: SaveArg after RunAsync")
	}
	p, err := t.Save(c.cx, v)
	if err != nil {
		c.abort()
		return nil, err
	}
	c.persisted = append(c.persisted, p)
	return p, nil
}

// Close finalizes the persisted arguments of a call that never launched.
// Defer it right after NewAsyncCall: a panic between SaveArg and RunAsync
// then still releases every root. After RunAsync the worker owns the
// storage and Close is a no-op.
func (c *AsyncCall) Close() {
	if c.launched {
		return
	}
	c.abort()
}

// abort finalizes the already-persisted arguments after a conversion
// failure. Partial failure requires full cleanup, not best-effort cleanup.
func (c *AsyncCall) abort() {
	for i := len(c.persisted) - 1; i >= 0; i-- {
		c.persisted[i].Finalize(c.cx)
	}
	c.persisted = nil
}

// RunAsync launches the deferred work and returns the host-visible pending
// result. work runs on a fresh worker goroutine and may load the persisted
// arguments; everything after it (finalization of every persisted storage,
// result conversion, settling) happens back on the host context, in that
// order. Failure at any phase still reaches the finalization step
// for every persisted argument before the deferred result is rejected.
func RunAsync[N any](c *AsyncCall, result ResultType[N], work func() (N, error)) (host.Value, error) {
	if c.launched {
		panic("bridge: RunAsync called twice")
	}
	c.launched = true

	deferred, err := c.cx.Runtime().NewDeferred(c.cx)
	if err != nil {
		c.launched = false
		c.abort()
		return nil, ToException(c.cx, err)
	}

	rt := c.cx.Runtime()
	persisted := c.persisted
	c.persisted = nil

	go func() {
		native, workErr := work()

		postErr := rt.Post(func(cx *host.Context) {
			// Finalize strictly after the native work and strictly
			// before the result settles, success or not.
			for i := len(persisted) - 1; i >= 0; i-- {
				persisted[i].Finalize(cx)
			}

			if workErr != nil {
				deferred.Reject(cx, exceptionValue(cx, workErr))
				return
			}
			hv, convErr := result.Convert(cx, native)
			if convErr != nil {
				deferred.Reject(cx, exceptionValue(cx, convErr))
				return
			}
			deferred.Resolve(cx, hv)
		})
		if postErr != nil {
			// The host loop is gone; nothing can be finalized or
			// settled on it anymore. Surface the stall instead of
			// touching host memory off-thread.
			Logger().Error("host loop closed before deferred call settled",
				zap.Error(postErr))
		}
	}()

	return deferred.Value(), nil
}

// exceptionValue maps a native error to the host exception value to reject
// with.
func exceptionValue(cx *host.Context, err error) host.Value {
	return ToException(cx, err).Value
}
