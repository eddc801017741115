package connection

import "sync"

// worker is a single-slot background executor: tasks run one at a time,
// in submission order, on one goroutine.
type worker struct {
	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

func newWorker(capacity int, done chan struct{}) *worker {
	w := &worker{
		tasks: make(chan func(), capacity),
		done:  done,
	}
	go w.loop()
	return w
}

func (w *worker) loop() {
	defer close(w.done)
	for task := range w.tasks {
		task()
	}
}

// submit queues task. It must not be called after close.
func (w *worker) submit(task func()) {
	w.tasks <- task
}

func (w *worker) close() {
	w.closeOnce.Do(func() { close(w.tasks) })
}
