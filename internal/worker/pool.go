package worker

import (
	"context"
	"sync"

	"github.com/quartzlab/tradepost/internal/logger"
)

// Job is a unit of background work, such as a trade expiry sweep.
type Job interface {
	Process(ctx context.Context) error
}

// Pool runs jobs on a fixed set of workers. A failed job is logged and
// dropped; periodic jobs get retried on their next tick anyway.
type Pool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	quit     chan struct{}
}

// NewPool creates a pool with the given worker count and queue capacity.
func NewPool(workers int, queueSize int) *Pool {
	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		quit:     make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			ctx := context.Background()
			if err := job.Process(ctx); err != nil {
				logger.FromContext(ctx).Error(LogMsgWorkerJobFailed, "error", err)
			}
		case <-p.quit:
			return
		}
	}
}

// Enqueue queues a job. Blocks when the queue is full.
func (p *Pool) Enqueue(job Job) {
	p.jobQueue <- job
}

// Stop signals the workers and waits for them to exit. Jobs still sitting in
// the queue are abandoned.
func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
}
