// Package notify runs best-effort side effects off the request path.
// A dispatched task is executed once, its outcome is logged, and its
// failure is never propagated to the operation that fired it.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is a named unit of best-effort work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher executes tasks on a background worker.
type Dispatcher struct {
	logger  *logrus.Logger
	timeout time.Duration
	tasks   chan Task
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher starts a dispatcher with the given queue capacity.
func NewDispatcher(logger *logrus.Logger, buffer int) *Dispatcher {
	d := &Dispatcher{
		logger:  logger,
		timeout: 30 * time.Second,
		tasks:   make(chan Task, buffer),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// Dispatch queues a task for execution. If the queue is full the task is
// dropped and the drop is logged; callers never block on notification work.
func (d *Dispatcher) Dispatch(name string, fn func(ctx context.Context) error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.WithField("task", name).Warn("Dispatcher closed, task dropped")
		return
	}

	select {
	case d.tasks <- Task{Name: name, Run: fn}:
	default:
		d.logger.WithField("task", name).Warn("Notification queue full, task dropped")
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.tasks)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for task := range d.tasks {
		d.execute(task)
	}
}

func (d *Dispatcher) execute(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	if err := task.Run(ctx); err != nil {
		d.logger.WithFields(logrus.Fields{
			"task":    task.Name,
			"latency": time.Since(start),
		}).WithError(err).Error("Notification task failed")
		return
	}

	d.logger.WithFields(logrus.Fields{
		"task":    task.Name,
		"latency": time.Since(start),
	}).Info("Notification task completed")
}
