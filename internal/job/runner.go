package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQueueFull is returned by Submit when the in-memory queue has no room.
// The job stays persisted as pending and is queued by the job monitor once a
// slot frees up.
var ErrQueueFull = errors.New("job queue is full, try again later")

// RunnerConfig holds configuration for the job runner.
type RunnerConfig struct {
	// WorkerCount is the number of concurrent workers.
	WorkerCount int

	// QueueSize is the capacity of the in-memory job queue.
	QueueSize int

	// StuckJobAge is how long a job may stay processing before it is reset.
	StuckJobAge time.Duration

	// StuckJobCheckInterval is how often the job monitor resets stuck jobs
	// and queues pending jobs that missed the queue.
	StuckJobCheckInterval time.Duration
}

// DefaultRunnerConfig returns a default configuration.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:           2,
		QueueSize:             100,
		StuckJobAge:           15 * time.Minute,
		StuckJobCheckInterval: 5 * time.Minute,
	}
}

// Runner executes jobs on a pool of workers. Every submitted job is
// persisted before it is queued, and jobs left pending or processing by a
// previous run are recovered on Start. While running, the job monitor
// queues pending jobs that a full queue turned away.
type Runner struct {
	store      Store
	registry   *Registry
	jobChan    chan Job
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopOnce   sync.Once
	queuedMu   sync.Mutex
	queued     map[uuid.UUID]struct{}
	config     RunnerConfig
	logger     *slog.Logger
	errHandler func(job Job, err error)
}

// NewRunner creates a runner. registry rebuilds recovered jobs.
func NewRunner(store Store, registry *Registry, config RunnerConfig, logger *slog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 1
	}
	if config.StuckJobCheckInterval == 0 {
		config.StuckJobCheckInterval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "job_runner"))

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		store:      store,
		registry:   registry,
		jobChan:    make(chan Job, config.QueueSize),
		queued:     make(map[uuid.UUID]struct{}),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		errHandler: func(job Job, err error) {
			logger.Error("job execution failed",
				"job_id", job.ID(),
				"job_type", job.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler replaces the callback invoked when a job fails.
func (r *Runner) SetErrorHandler(handler func(job Job, err error)) {
	r.errHandler = handler
}

// Submit persists job and queues it for execution.
func (r *Runner) Submit(ctx context.Context, job Job) error {
	if err := r.store.SaveJob(ctx, RecordOf(job)); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	if !r.enqueue(job) {
		return ErrQueueFull
	}
	return nil
}

// enqueue puts job on the queue unless it is already queued or running.
// It reports false only when the queue is full.
func (r *Runner) enqueue(job Job) bool {
	r.queuedMu.Lock()
	defer r.queuedMu.Unlock()

	if _, ok := r.queued[job.ID()]; ok {
		return true
	}

	select {
	case r.jobChan <- job:
		r.queued[job.ID()] = struct{}{}
		return true
	default:
		return false
	}
}

func (r *Runner) dequeued(id uuid.UUID) {
	r.queuedMu.Lock()
	delete(r.queued, id)
	r.queuedMu.Unlock()
}

func (r *Runner) isQueued(id uuid.UUID) bool {
	r.queuedMu.Lock()
	defer r.queuedMu.Unlock()
	_, ok := r.queued[id]
	return ok
}

// Start recovers unfinished jobs, then launches the workers and the job
// monitor.
func (r *Runner) Start() error {
	if err := r.Recover(r.ctx); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.jobMonitor()

	return nil
}

// Stop cancels the workers and waits for them to exit. Jobs still queued
// stay pending in the store.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.cancelFunc()
		r.wg.Wait()
	})
}

// Recover requeues pending jobs and resets processing jobs to pending.
func (r *Runner) Recover(ctx context.Context) error {
	pending, err := r.store.GetPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending jobs: %w", err)
	}

	processing, err := r.store.GetProcessingJobs(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing jobs: %w", err)
	}

	r.logger.Info("recovering unfinished jobs",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, rec := range pending {
		r.requeue(ctx, rec)
	}

	for _, rec := range processing {
		if err := r.store.UpdateJobStatus(ctx, rec.ID, StatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing job status",
				"job_id", rec.ID,
				"job_type", rec.Type,
				"error", err)
			continue
		}
		r.requeue(ctx, rec)
	}

	return nil
}

// requeue rebuilds rec through the registry and puts it on the queue.
// Records of unknown type are marked failed.
func (r *Runner) requeue(ctx context.Context, rec Record) {
	job, err := r.registry.Build(rec)
	if err != nil {
		r.logger.Error("failed to rebuild job",
			"job_id", rec.ID,
			"job_type", rec.Type,
			"error", err)
		if updateErr := r.store.UpdateJobStatus(ctx, rec.ID, StatusFailed, err.Error()); updateErr != nil {
			r.logger.Error("failed to mark job failed", "job_id", rec.ID, "error", updateErr)
		}
		return
	}

	if !r.enqueue(job) {
		r.logger.Warn("failed to requeue job, queue is full",
			"job_id", rec.ID,
			"job_type", rec.Type)
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case job := <-r.jobChan:
			r.processJob(job, id)
			r.dequeued(job.ID())
		}
	}
}

func (r *Runner) processJob(job Job, workerID int) {
	ctx := r.ctx
	logger := r.logger.With(
		"job_id", job.ID(),
		"job_type", job.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateJobStatus(ctx, job.ID(), StatusProcessing, ""); err != nil {
		logger.Error("failed to update job status to processing", "error", err)
		return
	}

	logger.Debug("processing job")

	if err := job.Execute(ctx); err != nil {
		if updateErr := r.store.UpdateJobStatus(ctx, job.ID(), StatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update job status to failed", "error", updateErr)
		}
		r.errHandler(job, err)
		return
	}

	logger.Debug("job completed")
	if err := r.store.UpdateJobStatus(ctx, job.ID(), StatusCompleted, ""); err != nil {
		logger.Error("failed to update job status to completed", "error", err)
	}
}

// jobMonitor periodically resets jobs stuck in processing and queues
// pending jobs that were turned away by a full queue.
func (r *Runner) jobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			r.resetStuckJobs()
			r.requeuePending()
		}
	}
}

func (r *Runner) resetStuckJobs() {
	stuck, err := r.store.GetProcessingJobs(r.ctx, r.config.StuckJobAge)
	if err != nil {
		r.logger.Error("failed to check for stuck jobs", "error", err)
		return
	}
	if len(stuck) == 0 {
		return
	}

	r.logger.Info("found stuck jobs", "count", len(stuck))
	for _, rec := range stuck {
		if r.isQueued(rec.ID) {
			continue
		}
		if err := r.store.UpdateJobStatus(r.ctx, rec.ID, StatusPending,
			"Reset after being stuck in processing state"); err != nil {
			r.logger.Error("failed to reset stuck job status",
				"job_id", rec.ID,
				"job_type", rec.Type,
				"error", err)
			continue
		}
		r.requeue(r.ctx, rec)
	}
}

func (r *Runner) requeuePending() {
	pending, err := r.store.GetPendingJobs(r.ctx)
	if err != nil {
		r.logger.Error("failed to check for pending jobs", "error", err)
		return
	}

	for _, rec := range pending {
		if r.isQueued(rec.ID) {
			continue
		}
		r.requeue(r.ctx, rec)
	}
}
