package host

import (
	"github.com/anooppoommen/libsignal-client/roots"
)

// Root keeps a host object alive until explicitly released. It is the
// collection barrier behind every persistent handle: as long as the root
// lives, the host's collector must not reclaim the object or anything the
// object owns (in particular a buffer's backing storage or a wrapper's
// embedded native payload).
//
// A Root is released exactly once, on the host thread. Releasing twice
// panics; the bridge's leak checks flag roots that are dropped without
// being released at all.
type Root struct {
	obj      Object
	handle   roots.Handle
	registry *roots.Registry
	released bool
}

// NewRoot records obj in the registry and returns its root. Adapters call
// this from their Runtime.Root implementations.
func NewRoot(obj Object, registry *roots.Registry, site string) *Root {
	r := &Root{obj: obj, registry: registry}
	if registry != nil {
		r.handle = registry.Track(site, obj)
	}
	return r
}

// Object returns the rooted object. It panics after Release: a released
// root no longer guarantees the object is alive.
func (r *Root) Object() Object {
	if r.released {
		panic("host: root used after release")
	}
	return r.obj
}

// Release drops the collection barrier. Must run on the host thread.
func (r *Root) Release(cx *Context) {
	if r.released {
		panic("host: root released twice")
	}
	r.released = true
	if r.registry != nil {
		r.registry.Release(r.handle)
	}
	r.obj = nil
}

// Released reports whether the root has been released.
func (r *Root) Released() bool {
	return r.released
}
