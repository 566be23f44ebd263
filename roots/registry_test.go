package roots

import (
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnRootEvent(e Event) {
	o.events = append(o.events, e)
}

func TestRegistry_Basic(t *testing.T) {
	r := NewRegistry(nil)

	h := r.Track("site-a", "obj")
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}
	if r.Len() != 1 {
		t.Fatalf("Expected Len() == 1, got %d", r.Len())
	}

	if !r.Release(h) {
		t.Fatal("Release failed")
	}
	if r.Len() != 0 {
		t.Fatalf("Expected Len() == 0 after Release, got %d", r.Len())
	}

	// Double release
	if r.Release(h) {
		t.Fatal("Second Release should fail")
	}

	// Handle 0 is always invalid
	if r.Release(0) {
		t.Fatal("Release(0) should fail")
	}
}

func TestRegistry_HandleReuse(t *testing.T) {
	r := NewRegistry(nil)

	h1 := r.Track("a", 1)
	r.Release(h1)

	h2 := r.Track("b", 2)
	if h2 != h1 {
		t.Fatalf("Expected freed handle %d to be reused, got %d", h1, h2)
	}
}

func TestRegistry_Observer(t *testing.T) {
	r := NewRegistry(nil)
	obs := &testObserver{}
	r.Subscribe(obs)

	h := r.Track("site", "obj")
	r.Release(h)

	if len(obs.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventTracked || obs.events[1].Type != EventReleased {
		t.Fatalf("Unexpected event sequence: %+v", obs.events)
	}
	if obs.events[0].Site != "site" {
		t.Fatalf("Expected site in event, got %q", obs.events[0].Site)
	}

	r.Unsubscribe(obs)
	r.Track("site", "obj2")
	if len(obs.events) != 2 {
		t.Fatal("Unsubscribed observer should not receive events")
	}
}

func TestRegistry_CloseReportsLeaks(t *testing.T) {
	r := NewRegistry(nil)
	obs := &testObserver{}
	r.Subscribe(obs)

	r.Track("leaky-site", "obj1")
	r.Track("leaky-site", "obj2")
	h := r.Track("clean-site", "obj3")
	r.Release(h)

	leaked := r.Close()
	if leaked != 2 {
		t.Fatalf("Expected 2 leaked roots, got %d", leaked)
	}

	var leakEvents int
	for _, e := range obs.events {
		if e.Type == EventLeaked {
			leakEvents++
		}
	}
	if leakEvents != 2 {
		t.Fatalf("Expected 2 leak events, got %d", leakEvents)
	}

	// Closed registry rejects new roots
	if r.Track("after-close", "obj") != 0 {
		t.Fatal("Track after Close should return 0")
	}
}
