package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/ingest"
)

// Analyzer is the pipeline entry point the workers call.
type Analyzer interface {
	Analyze(ctx context.Context, doc entity.Document) (entity.ClaimAnalysisResult, error)
}

// Loader reads a job's file into a document.
type Loader interface {
	Load(path string) (ingest.Loaded, error)
}

type ProcessorQueue struct {
	proc    Analyzer
	loader  Loader
	sink    Sink
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// stop is closed first on Shutdown to release blocked senders; mu then
	// keeps ch from being closed under an in-flight send.
	stop     chan struct{}
	stopOnce sync.Once
	mu       sync.RWMutex
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(proc Analyzer, loader Loader, sink Sink, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = func(Outcome) {}
	}
	q := &ProcessorQueue{
		proc:    proc,
		loader:  loader,
		sink:    sink,
		logger:  logger,
		workers: 4,
		timeout: time.Minute,
		ch:      make(chan Job, 256),
		stop:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)

				for job := range q.ch {
					out := q.process(job)
					if out.Err != nil {
						q.logger.Error("queue.job.failed", "worker_id", workerID, "job_id", job.ID, "path", job.Path, "error", out.Err)
					} else {
						q.logger.Info("queue.job.ok", "worker_id", workerID, "job_id", job.ID, "path", job.Path,
							"action", out.Result.Action, "elapsed_ms", out.Duration.Milliseconds())
					}
					q.sink(out)
				}

				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) process(job Job) Outcome {
	start := time.Now()
	out := Outcome{Job: job}

	loaded, err := q.loader.Load(job.Path)
	if err != nil {
		out.Err = err
		out.Duration = time.Since(start)
		return out
	}
	out.HashHex = loaded.HashHex

	ctx, cancel := context.WithTimeout(common.WithRequestID(context.Background(), job.ID), q.timeout)
	defer cancel()
	out.Result, out.Err = q.proc.Analyze(ctx, loaded.Document)
	out.Duration = time.Since(start)
	return out
}

// Enqueue blocks while the buffer is full until ctx is done or Shutdown
// starts.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	select {
	case <-q.stop:
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queue.job.queued", "job_id", job.ID, "path", job.Path)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-q.stop:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to drain or for
// ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	first := false
	q.stopOnce.Do(func() {
		close(q.stop)
		first = true
	})
	if !first {
		return
	}
	q.mu.Lock()
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
