package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"slackbridge/internal/log"
)

// TaskFunc is the body of a background task. It runs with a bounded deadline;
// a returned error is logged and goes nowhere else.
type TaskFunc func(ctx context.Context) error

// Scheduler hands tasks off for asynchronous execution.
type Scheduler interface {
	Submit(name string, fn TaskFunc) string
}

type queuedTask struct {
	id   string
	name string
	fn   TaskFunc
}

// Runner executes submitted tasks on a fixed worker pool. Tasks are
// independent; no ordering is guaranteed between them. A panicking or failing
// task is contained at the task boundary and never takes the process down.
type Runner struct {
	tasks   chan queuedTask
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	closed   bool
	overflow sync.WaitGroup

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewRunner creates a Runner with the given pool size and per-task timeout.
// The timeout is the de facto cancellation boundary: a hung outbound call
// cannot hold a worker beyond it.
func NewRunner(workers int, timeout time.Duration) *Runner {
	if workers <= 0 {
		workers = 1
	}
	r := &Runner{
		tasks:   make(chan queuedTask, 4*workers),
		timeout: timeout,
		logger:  log.WithComponent("runner"),
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	return r
}

// Submit enqueues a task and returns its id immediately. It never blocks the
// caller: when the buffer is full the handoff moves to its own goroutine so
// the HTTP acknowledgement path stays fast. Overflow handoffs are tracked so
// Close drains them before the channel goes away.
func (r *Runner) Submit(name string, fn TaskFunc) string {
	t := queuedTask{id: uuid.NewString(), name: name, fn: fn}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warn("task rejected, runner closed", "task_id", t.id, "task", t.name)
		return t.id
	}
	select {
	case r.tasks <- t:
		r.mu.Unlock()
	default:
		r.overflow.Add(1)
		r.mu.Unlock()
		go func() {
			defer r.overflow.Done()
			r.tasks <- t
		}()
	}
	return t.id
}

// Close stops accepting tasks, waits for parked overflow handoffs to land,
// then waits for queued tasks to finish. Safe to call more than once.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		r.overflow.Wait()
		close(r.tasks)
	})
	r.wg.Wait()
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for t := range r.tasks {
		r.run(t)
	}
}

func (r *Runner) run(t queuedTask) {
	logger := r.logger.With("task_id", t.id, "task", t.name)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("task panicked", "panic", fmt.Sprint(rec))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	if err := t.fn(ctx); err != nil {
		logger.Error("task failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	logger.Debug("task finished", "duration_ms", time.Since(start).Milliseconds())
}
