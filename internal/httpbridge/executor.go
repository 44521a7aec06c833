package httpbridge

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
)

// Executor runs tasks to completion on a fixed set of worker goroutines,
// independent of whatever loop spawned them.
type Executor struct {
	// Configuration
	workers   int
	queueSize int
	logger    *zap.Logger

	// Runtime state
	workChan chan *Task
	metrics  *executorMetrics
	wg       sync.WaitGroup
	quit     chan struct{}

	// Lifecycle management
	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	// Statistics (atomic)
	spawned   int64
	completed int64
	failed    int64
	dropped   int64

	registerer    prometheus.Registerer
	metricsPrefix string
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger sets the logger used for task lifecycle events.
func WithExecutorLogger(logger *zap.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithExecutorMetrics registers executor metrics on reg under prefix.
func WithExecutorMetrics(reg prometheus.Registerer, prefix string) ExecutorOption {
	return func(e *Executor) {
		e.registerer = reg
		e.metricsPrefix = prefix
	}
}

// NewExecutor creates an executor. Non-positive sizes fall back to defaults.
func NewExecutor(workers, queueSize int, opts ...ExecutorOption) (*Executor, error) {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	e := &Executor{
		workers:   workers,
		queueSize: queueSize,
		logger:    zap.NewNop(),
		workChan:  make(chan *Task, queueSize),
		quit:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registerer != nil {
		prefix := e.metricsPrefix
		if prefix == "" {
			prefix = defaultMetricsPrefix
		}
		m, err := newExecutorMetrics(e.registerer, prefix)
		if err != nil {
			return nil, err
		}
		e.metrics = m
	}
	return e, nil
}

// Start launches the workers. Cancelling ctx shuts the executor down the
// same way Stop does; tasks already queued still run, with ctx cancelled.
func (e *Executor) Start(ctx context.Context) error {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	if e.started {
		return ErrExecutorAlreadyStarted
	}

	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.worker(ctx)
	}
	go func() {
		select {
		case <-ctx.Done():
			e.shutdown()
		case <-e.quit:
		}
	}()

	e.started = true
	e.logger.Debug("executor started", zap.Int("workers", e.workers), zap.Int("queue_size", e.queueSize))
	return nil
}

// Spawn queues fn and returns its handle without blocking. It fails when the
// queue is full or the executor is not running.
func (e *Executor) Spawn(fn TaskFunc) (*Task, error) {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	if e.stopped {
		e.drop()
		return nil, ErrExecutorStopped
	}
	if !e.started {
		return nil, ErrExecutorNotStarted
	}

	task := newTask(fn)
	select {
	case e.workChan <- task:
		atomic.AddInt64(&e.spawned, 1)
		if e.metrics != nil {
			e.metrics.spawned.Inc()
			e.metrics.queueDepth.Set(float64(len(e.workChan)))
		}
		return task, nil
	default:
		e.drop()
		return nil, ErrQueueFull
	}
}

// Accepting reports whether Spawn can currently succeed, ignoring queue space.
func (e *Executor) Accepting() bool {
	return e.Ready() == nil
}

// Ready returns ErrExecutorNotStarted or ErrExecutorStopped when Spawn would
// fail for lifecycle reasons, and nil otherwise.
func (e *Executor) Ready() error {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()
	switch {
	case e.stopped:
		return ErrExecutorStopped
	case !e.started:
		return ErrExecutorNotStarted
	}
	return nil
}

// Stop stops accepting tasks and waits for queued ones to finish.
func (e *Executor) Stop(timeout time.Duration) error {
	e.lifecycleMu.Lock()
	started := e.started
	e.lifecycleMu.Unlock()
	if !started {
		return nil
	}

	e.shutdown()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// Stats returns current executor statistics
func (e *Executor) Stats() ExecutorStats {
	return ExecutorStats{
		Workers:    e.workers,
		QueueSize:  e.queueSize,
		QueueDepth: len(e.workChan),
		Spawned:    atomic.LoadInt64(&e.spawned),
		Completed:  atomic.LoadInt64(&e.completed),
		Failed:     atomic.LoadInt64(&e.failed),
		Dropped:    atomic.LoadInt64(&e.dropped),
	}
}

// ExecutorStats represents executor statistics
type ExecutorStats struct {
	Workers    int   `json:"workers"`
	QueueSize  int   `json:"queue_size"`
	QueueDepth int   `json:"queue_depth"`
	Spawned    int64 `json:"spawned"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
}

func (e *Executor) shutdown() {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	close(e.workChan)
	close(e.quit)
	e.logger.Debug("executor stopping", zap.Int("queued", len(e.workChan)))
}

func (e *Executor) drop() {
	atomic.AddInt64(&e.dropped, 1)
	if e.metrics != nil {
		e.metrics.dropped.Inc()
	}
}

// worker runs tasks until the queue is closed and drained.
func (e *Executor) worker(ctx context.Context) {
	defer e.wg.Done()

	for task := range e.workChan {
		start := time.Now()
		failed := task.run(ctx)
		duration := time.Since(start)

		atomic.AddInt64(&e.completed, 1)
		status := "success"
		if failed {
			atomic.AddInt64(&e.failed, 1)
			status = "error"
		}
		if e.metrics != nil {
			e.metrics.completed.WithLabelValues(status).Inc()
			e.metrics.duration.WithLabelValues(status).Observe(duration.Seconds())
			e.metrics.queueDepth.Set(float64(len(e.workChan)))
		}
	}
}
