package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job asks for one claim file to be analyzed.
type Job struct {
	ID          string
	Path        string
	SubmittedAt time.Time
}

// NewJob stamps a job with a fresh id and submission time.
func NewJob(path string) Job {
	return Job{ID: uuid.NewString(), Path: path, SubmittedAt: time.Now().UTC()}
}

// Outcome is what a worker produced for a job. Err is set when the file could
// not be loaded or the analysis was refused; Result is zero in that case.
type Outcome struct {
	Job      Job
	HashHex  string
	Result   entity.ClaimAnalysisResult
	Err      error
	Duration time.Duration
}

// Sink receives outcomes. It is called from worker goroutines and must be
// safe for concurrent use.
type Sink func(Outcome)

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
