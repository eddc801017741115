package connection

import (
	"context"
	"sync"
)

// Dispatcher runs callbacks on the caller's callback context.
type Dispatcher interface {
	Post(fn func())
}

// Immediate runs callbacks on whichever goroutine posts them.
type Immediate struct{}

func (Immediate) Post(fn func()) { fn() }

// Loop is a FIFO callback queue drained by the single goroutine that calls Run.
// Post never blocks, so callbacks may post further callbacks.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	notify chan struct{}
}

// NewLoop returns an idle loop. Callbacks run once Run is called.
func NewLoop() *Loop {
	return &Loop{notify: make(chan struct{}, 1)}
}

// Post enqueues fn. Callbacks posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.wake()
}

// Run drains the queue until ctx is done or Close is called. Callbacks
// already queued when Close is called still run.
func (l *Loop) Run(ctx context.Context) error {
	return l.RunUntil(ctx, nil)
}

// RunUntil drains the queue like Run but also returns once done is closed
// and every callback posted before that has run. The loop stays open, so it
// can be run again for later executions. A nil done never fires.
func (l *Loop) RunUntil(ctx context.Context, done <-chan struct{}) error {
	for {
		// Checked before taking the batch: posts made before done closed
		// are already queued.
		finished := false
		select {
		case <-done:
			finished = true
		default:
		}

		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		closed := l.closed
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			continue
		}
		if finished || closed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.notify:
		case <-done:
		}
	}
}

// Close stops accepting callbacks and lets Run return once drained.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.wake()
}

func (l *Loop) wake() {
	select {
	case l.notify <- struct{}{}:
	default:
	}
}
