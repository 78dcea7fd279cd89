// Package workerpool provides a bounded worker pool. The print worker uses
// it to render many prescriptions' grids in parallel: each render is a pure
// computation, so workers share nothing beyond the queue.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of work.
type Job struct {
	ID      string
	Payload any
	Context context.Context
}

// Result is the outcome of one job.
type Result struct {
	JobID string
	Err   error
	Data  any
}

// WorkFunc processes one job.
type WorkFunc func(ctx context.Context, job *Job) (any, error)

// Config tunes the pool.
type Config struct {
	// Workers is the number of concurrent workers.
	Workers int
	// QueueSize bounds the job queue.
	QueueSize int
	// MaxRetries is the retry budget per job.
	MaxRetries int
	// RetryDelay is the base delay between retries, scaled linearly per attempt.
	RetryDelay time.Duration
	// ShutdownTimeout bounds how long Stop waits for in-flight jobs.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns defaults sized for render workloads, which are
// CPU-bound and brief.
func DefaultConfig() Config {
	return Config{
		Workers:         16,
		QueueSize:       1024,
		MaxRetries:      2,
		RetryDelay:      50 * time.Millisecond,
		ShutdownTimeout: 30 * time.Second,
	}
}

// ErrQueueFull is returned by Submit when the queue has no room.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by Submit after Stop has begun.
var ErrStopped = errors.New("pool is shutting down")

// Pool runs jobs on a fixed set of workers.
type Pool struct {
	config  Config
	work    WorkFunc
	logger  *zap.Logger
	jobs    chan *Job
	results chan *Result
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	submitted int64
	completed int64
	failed    int64
	retried   int64
}

// New creates a pool.
func New(cfg Config, fn WorkFunc, logger *zap.Logger) (*Pool, error) {
	if fn == nil {
		return nil, errors.New("work function is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		config:  cfg,
		work:    fn,
		logger:  logger,
		jobs:    make(chan *Job, cfg.QueueSize),
		results: make(chan *Result, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("worker pool started",
		zap.Int("workers", p.config.Workers),
		zap.Int("queue_size", p.config.QueueSize))
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job *Job) error {
	select {
	case <-p.ctx.Done():
		return ErrStopped
	default:
	}

	select {
	case p.jobs <- job:
		atomic.AddInt64(&p.submitted, 1)
		return nil
	default:
		return ErrQueueFull
	}
}

// Results exposes the result stream.
func (p *Pool) Results() <-chan *Result {
	return p.results
}

// Stop drains the queue and waits for workers, bounded by ShutdownTimeout.
func (p *Pool) Stop() {
	p.cancel()
	close(p.jobs)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped")
	case <-time.After(p.config.ShutdownTimeout):
		p.logger.Warn("worker pool shutdown timed out")
	}
	close(p.results)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		p.runJob(id, job)
	}
}

func (p *Pool) runJob(workerID int, job *Job) {
	ctx := job.Context
	if ctx == nil {
		ctx = p.ctx
	}

	var data any
	var err error
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}

		data, err = p.work(ctx, job)
		if err == nil || attempt >= p.config.MaxRetries {
			break
		}

		atomic.AddInt64(&p.retried, 1)
		p.logger.Debug("retrying job",
			zap.String("job_id", job.ID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(p.config.RetryDelay * time.Duration(attempt+1)):
			continue
		}
		break
	}

	if err != nil {
		err = fmt.Errorf("job %s: %w", job.ID, err)
		atomic.AddInt64(&p.failed, 1)
		p.logger.Error("job failed",
			zap.String("job_id", job.ID),
			zap.Int("worker_id", workerID),
			zap.Error(err))
	} else {
		atomic.AddInt64(&p.completed, 1)
	}

	select {
	case p.results <- &Result{JobID: job.ID, Err: err, Data: data}:
	default:
		p.logger.Warn("result channel full, dropping result",
			zap.String("job_id", job.ID))
	}
}

// Stats is a point-in-time view of pool counters.
type Stats struct {
	Submitted int64
	Completed int64
	Failed    int64
	Retried   int64
}

// Stats returns current counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: atomic.LoadInt64(&p.submitted),
		Completed: atomic.LoadInt64(&p.completed),
		Failed:    atomic.LoadInt64(&p.failed),
		Retried:   atomic.LoadInt64(&p.retried),
	}
}
