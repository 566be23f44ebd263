package bridge

import (
	"runtime"
	"testing"
	"time"

	"github.com/anooppoommen/libsignal-client/host/hosttest"
)

const leakMessage = "persistent storage dropped without finalize"

func TestLeakCheck_FlagsFinalizelessDrop(t *testing.T) {
	logs := captureLogs(t)
	rt := hosttest.New()
	cx := rt.Context()

	obj, err := Wrap(cx, &counter{})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}

	// Drop the persisted handle without finalizing it: the only reference
	// is the discarded return value.
	if _, err := HandleAsync[counter]().Save(cx, obj); err != nil {
		t.Fatalf("save: %v", err)
	}

	// GC finalizers run asynchronously; poll until the detector fires.
	deadline := time.Now().Add(5 * time.Second)
	for len(logs.FilterMessage(leakMessage).All()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expected the leak detector to flag the dropped storage")
		}
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}

	entry := logs.FilterMessage(leakMessage).All()[0]
	site, ok := entry.ContextMap()["site"].(string)
	if !ok || site == "" {
		t.Fatalf("Expected the creation site in the leak report, got %v", entry.ContextMap())
	}
}

func TestLeakCheck_FinalizedDropIsSilent(t *testing.T) {
	logs := captureLogs(t)
	rt := hosttest.New()
	cx := rt.Context()

	obj, err := Wrap(cx, &counter{})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	p, err := HandleAsync[counter]().Save(cx, obj)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	p.Finalize(cx)
	p = nil

	for i := 0; i < 3; i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	if n := len(logs.FilterMessage(leakMessage).All()); n != 0 {
		t.Fatalf("Finalized storage must not be reported, got %d reports", n)
	}
}
