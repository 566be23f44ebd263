package roots

import (
	"sync"

	"go.uber.org/zap"
)

// Handle is an opaque reference to a tracked root.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Event types for root lifecycle notifications.
type EventType uint8

const (
	EventTracked EventType = iota
	EventReleased
	EventLeaked
)

// Event represents a root lifecycle event.
type Event struct {
	Object any
	Site   string
	Handle Handle
	Type   EventType
}

// Observer receives notifications about root lifecycle events.
type Observer interface {
	OnRootEvent(Event)
}

type entry struct {
	object any
	site   string
	valid  bool
}

// Registry tracks live roots with observer support.
type Registry struct {
	entries   []entry
	freeList  []Handle
	observers []Observer
	logger    *zap.Logger
	mu        sync.Mutex
	closed    bool
}

// NewRegistry creates an empty registry. A nil logger disables the leak
// report on Close.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
		logger:   logger,
	}
}

// Track records a live root and returns its handle. The site string names
// where the root was created, for leak reports.
func (r *Registry) Track(site string, object any) Handle {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0
	}

	e := entry{object: object, site: site, valid: true}

	var handle Handle
	if len(r.freeList) > 0 {
		handle = r.freeList[len(r.freeList)-1]
		r.freeList = r.freeList[:len(r.freeList)-1]
		r.entries[handle-1] = e
	} else {
		r.entries = append(r.entries, e)
		handle = Handle(len(r.entries))
	}
	r.mu.Unlock()

	r.notify(Event{Type: EventTracked, Handle: handle, Site: site, Object: object})
	return handle
}

// Release drops a tracked root. Returns false for invalid or already
// released handles.
func (r *Registry) Release(handle Handle) bool {
	if handle == 0 {
		return false
	}

	r.mu.Lock()
	idx := int(handle) - 1
	if idx >= len(r.entries) || !r.entries[idx].valid {
		r.mu.Unlock()
		return false
	}

	e := r.entries[idx]
	r.entries[idx] = entry{}
	r.freeList = append(r.freeList, handle)
	r.mu.Unlock()

	r.notify(Event{Type: EventReleased, Handle: handle, Site: e.site, Object: e.object})
	return true
}

// Len returns the number of live roots.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entries {
		if e.valid {
			n++
		}
	}
	return n
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Close stops accepting roots and logs a leak report for every root that
// was never released. Returns the number of leaked roots.
func (r *Registry) Close() int {
	r.mu.Lock()
	r.closed = true
	var leaked []Event
	for i, e := range r.entries {
		if e.valid {
			leaked = append(leaked, Event{
				Type:   EventLeaked,
				Handle: Handle(i + 1),
				Site:   e.site,
				Object: e.object,
			})
			r.entries[i] = entry{}
		}
	}
	r.mu.Unlock()

	for _, ev := range leaked {
		r.logger.Error("root was never released",
			zap.Uint32("handle", uint32(ev.Handle)),
			zap.String("site", ev.Site))
		r.notify(ev)
	}
	return len(leaked)
}

func (r *Registry) notify(e Event) {
	r.mu.Lock()
	obs := make([]Observer, len(r.observers))
	copy(obs, r.observers)
	r.mu.Unlock()

	for _, o := range obs {
		o.OnRootEvent(e)
	}
}
