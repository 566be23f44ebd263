package hostjs

import (
	"sync"

	"github.com/anooppoommen/libsignal-client/errors"
)

// loop owns the engine goroutine. Everything that touches the goja runtime
// is funneled through it.
type loop struct {
	jobs   chan func()
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

func newLoop() *loop {
	l := &loop{
		jobs: make(chan func(), 256),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *loop) run() {
	defer close(l.done)
	for fn := range l.jobs {
		fn()
	}
}

func (l *loop) post(fn func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return errors.Closed("host loop")
	}
	l.jobs <- fn
	return nil
}

// sync runs fn on the loop and waits for it.
func (l *loop) sync(fn func()) error {
	ch := make(chan struct{})
	err := l.post(func() {
		defer close(ch)
		fn()
	})
	if err != nil {
		return err
	}
	<-ch
	return nil
}

func (l *loop) stop() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.jobs)
	l.mu.Unlock()
	<-l.done
}
