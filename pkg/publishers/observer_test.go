package publishers

import (
	"context"
	"sync"
	"testing"

	"github.com/samvad-hq/samvad-connection/pkg/lifecycle"
)

type lockedPublisher struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
	closed bool
}

func (p *lockedPublisher) ID() string   { return "locked" }
func (p *lockedPublisher) Type() string { return "stub" }
func (p *lockedPublisher) Publish(_ context.Context, evt Event) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	p.events = append(p.events, evt)
	p.mu.Unlock()
	return nil
}
func (p *lockedPublisher) Close() error {
	p.closed = true
	return nil
}

func TestObserverDeliversQueuedEventsOnClose(t *testing.T) {
	pub := &lockedPublisher{}
	obs := NewObserver("connctl", NewFanout([]Publisher{pub}), nil, 8)

	obs.Observe(lifecycle.Event{ExecutionID: "e1", Kind: lifecycle.KindRequestCreated})
	obs.Observe(lifecycle.Event{ExecutionID: "e1", Kind: lifecycle.KindSuccess})

	if err := obs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(pub.events) != 2 {
		t.Fatalf("expected 2 delivered events, got %d", len(pub.events))
	}
	if pub.events[0].App != "connctl" || pub.events[1].Lifecycle.Kind != lifecycle.KindSuccess {
		t.Fatalf("unexpected delivery %#v", pub.events)
	}
	if !pub.closed {
		t.Fatalf("expected publishers closed")
	}

	obs.Observe(lifecycle.Event{Kind: lifecycle.KindError})
	if err := obs.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if len(pub.events) != 2 {
		t.Fatalf("events after close must be dropped")
	}
}

func TestObserverDropsWhenBufferFull(t *testing.T) {
	pub := &lockedPublisher{block: make(chan struct{})}
	obs := NewObserver("connctl", NewFanout([]Publisher{pub}), nil, 1)

	// One event may be held by the delivery goroutine and one in the buffer;
	// the rest must be dropped without blocking.
	for i := 0; i < 10; i++ {
		obs.Observe(lifecycle.Event{Kind: lifecycle.KindSuccess})
	}
	close(pub.block)

	if err := obs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := len(pub.events); n == 0 || n > 2 {
		t.Fatalf("expected 1 or 2 delivered events, got %d", n)
	}
}
