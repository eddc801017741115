package publishers

import (
	"context"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-connection/pkg/lifecycle"
)

const (
	defaultObserverBuffer = 64
	defaultPublishTimeout = 10 * time.Second
)

// Observer forwards lifecycle events to a fanout from a background goroutine
// so connection callbacks never wait on a downstream sink.
type Observer struct {
	app     string
	fanout  *Fanout
	log     Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	events chan Event
	done   chan struct{}
}

// NewObserver starts the delivery goroutine. A buffer <= 0 uses the default.
func NewObserver(app string, fanout *Fanout, log Logger, buffer int) *Observer {
	if buffer <= 0 {
		buffer = defaultObserverBuffer
	}
	o := &Observer{
		app:     app,
		fanout:  fanout,
		log:     ensureLogger(log),
		timeout: defaultPublishTimeout,
		events:  make(chan Event, buffer),
		done:    make(chan struct{}),
	}
	go o.loop()
	return o
}

// Observe queues evt for delivery. Events are dropped when the buffer is full
// or the observer is closed.
func (o *Observer) Observe(evt lifecycle.Event) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return
	}

	select {
	case o.events <- NewEvent(o.app, evt):
	default:
		o.log.WarnObj("dropping lifecycle event, publisher buffer full", "publisher_backpressure", map[string]any{
			"execution_id": evt.ExecutionID,
			"kind":         evt.Kind,
		})
	}
}

func (o *Observer) loop() {
	defer close(o.done)
	for evt := range o.events {
		o.deliver(evt)
	}
}

func (o *Observer) deliver(evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	delivered, err := o.fanout.Publish(ctx, evt)
	if err != nil {
		o.log.ErrorObj("publish lifecycle event failed", "publisher_error", map[string]any{
			"execution_id": evt.Lifecycle.ExecutionID,
			"kind":         evt.Lifecycle.Kind,
			"delivered":    delivered,
			"error":        err.Error(),
		})
		return
	}
	o.log.DebugObj("lifecycle event published", "publisher_delivery", map[string]any{
		"execution_id": evt.Lifecycle.ExecutionID,
		"kind":         evt.Lifecycle.Kind,
		"delivered":    delivered,
	})
}

// Close stops accepting events, waits for queued ones to be delivered and
// closes the underlying publishers.
func (o *Observer) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		<-o.done
		return nil
	}
	o.closed = true
	close(o.events)
	o.mu.Unlock()

	<-o.done
	return o.fanout.Close()
}
