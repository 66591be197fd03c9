package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finaudy/internal/logger"
)

const jobTimeout = 120 * time.Second

// WorkerPool runs jobs on a fixed number of goroutines fed by a buffered
// channel.
type WorkerPool struct {
	workerCount int
	jobs        chan Job
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool creates a pool with workerCount workers and room for
// queueSize pending jobs.
func NewWorkerPool(workerCount, queueSize int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workerCount: workerCount,
		jobs:        make(chan Job, queueSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start() {
	logger.Named("jobs").Infow("starting worker pool", "workers", wp.workerCount)
	for i := 1; i <= wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.process(id, job)
		}
	}
}

func (wp *WorkerPool) process(workerID int, job Job) {
	log := logger.Named("jobs")

	ctx, cancel := context.WithTimeout(wp.ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job.Execute(ctx); err != nil {
		log.Errorw("job failed",
			"worker", workerID,
			"job", job.Description(),
			"account_id", job.AccountID(),
			"error", err,
		)
		return
	}
	log.Debugw("job completed",
		"worker", workerID,
		"job", job.Description(),
		"account_id", job.AccountID(),
		"duration", time.Since(start),
	)
}

// Submit queues a job without blocking. A full queue drops the job.
func (wp *WorkerPool) Submit(job Job) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return fmt.Errorf("worker pool is shut down")
	}

	select {
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	case wp.jobs <- job:
		return nil
	default:
		return fmt.Errorf("job queue full, dropping %s for account %s", job.Description(), job.AccountID())
	}
}

// SubmitBatch queues jobs and returns how many were accepted.
func (wp *WorkerPool) SubmitBatch(jobs []Job) int {
	log := logger.Named("jobs")
	submitted := 0
	for _, job := range jobs {
		if err := wp.Submit(job); err != nil {
			log.Warnw("failed to submit job", "job", job.Description(), "account_id", job.AccountID(), "error", err)
			continue
		}
		submitted++
	}
	log.Infow("submitted jobs", "submitted", submitted, "total", len(jobs))
	return submitted
}

// ShutdownWithTimeout stops accepting jobs and waits for queued ones to
// finish. Workers still running after timeout are cancelled.
func (wp *WorkerPool) ShutdownWithTimeout(timeout time.Duration) {
	log := logger.Named("jobs")

	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.jobs)
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("worker pool stopped gracefully")
	case <-time.After(timeout):
		log.Warn("worker pool shutdown timed out, cancelling jobs")
	}
	wp.cancel()
}
