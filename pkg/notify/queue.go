package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oncallchat/portal/pkg/observability"
)

// ErrQueueFull is returned when the task buffer has no room. Callers
// treat it like any other notification failure: log and move on.
var ErrQueueFull = errors.New("notification queue is full")

// ErrQueueClosed is returned when enqueueing after Close
var ErrQueueClosed = errors.New("notification queue is closed")

// Task is one unit of background work. Run is retried per the queue's
// policy; it should be idempotent.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Metrics counts queue activity
type Metrics struct {
	enqueued *prometheus.CounterVec
	retries  *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewMetrics registers the queue counters
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		enqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_notify_tasks_enqueued_total",
			Help: "Background tasks accepted by the notification queue",
		}, []string{"task"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_notify_task_retries_total",
			Help: "Background task attempts that failed and were retried",
		}, []string{"task"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_notify_tasks_failed_total",
			Help: "Background tasks dropped after exhausting retries",
		}, []string{"task"}),
	}
	reg.MustRegister(m.enqueued, m.retries, m.failures)
	return m
}

// Queue is a bounded background work queue with retrying workers
type Queue struct {
	tasks   chan Task
	workers int
	policy  *RetryPolicy
	logger  *observability.Logger
	metrics *Metrics

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewQueue creates a queue with the given worker count and buffer size
func NewQueue(workers, buffer int, policy *RetryPolicy, logger *observability.Logger, metrics *Metrics) *Queue {
	if workers <= 0 {
		workers = 2
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &Queue{
		tasks:   make(chan Task, buffer),
		workers: workers,
		policy:  policy,
		logger:  logger,
		metrics: metrics,
	}
}

// Start launches the worker goroutines
func (q *Queue) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

// Enqueue hands a task to the workers without blocking
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		if q.metrics != nil {
			q.metrics.enqueued.WithLabelValues(task.Name).Inc()
		}
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops intake, drains queued tasks, and waits for workers
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
	if q.cancel != nil {
		q.cancel()
	}
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for task := range q.tasks {
		func() {
			defer observability.RecoverPanic(q.logger, "notify worker: "+task.Name)
			q.run(ctx, task)
		}()
	}
}

// run executes a task, retrying with backoff until it succeeds, the
// policy gives up, or the queue context is cancelled.
func (q *Queue) run(ctx context.Context, task Task) {
	attempts := 0
	for {
		attempts++
		err := task.Run(ctx)
		if err == nil {
			return
		}

		if !q.policy.ShouldRetry(attempts) {
			if q.metrics != nil {
				q.metrics.failures.WithLabelValues(task.Name).Inc()
			}
			q.logger.WithError(err).WithFields(map[string]interface{}{
				"task":     task.Name,
				"attempts": attempts,
			}).Error("background task dropped after retries")
			return
		}

		if q.metrics != nil {
			q.metrics.retries.WithLabelValues(task.Name).Inc()
		}
		q.logger.WithError(err).WithFields(map[string]interface{}{
			"task":    task.Name,
			"attempt": attempts,
		}).Warn("background task failed, retrying")

		select {
		case <-ctx.Done():
			return
		case <-time.After(q.policy.NextRetryDelay(attempts)):
		}
	}
}
