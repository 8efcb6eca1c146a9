package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"fts-articles/internal/lib/logger/sl"

	"golang.org/x/sync/errgroup"
)

// Recorder receives the outcome of every job.
type Recorder interface {
	RecordSuccess(duration time.Duration)
	RecordFailure(duration time.Duration)
}

// WorkerPool runs a batch of jobs with at most workersCount of them in flight.
// A failing job does not stop the others; its error is kept in its Result.
type WorkerPool[A, R any] struct {
	log           *slog.Logger
	workersCount  int
	recorder      Recorder
	activeWorkers int32
}

func New[A, R any](log *slog.Logger, numWorkers int, recorder Recorder) *WorkerPool[A, R] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[A, R]{
		log:          log,
		workersCount: numWorkers,
		recorder:     recorder,
	}
}

func (wp *WorkerPool[A, R]) ActiveWorkersCount() int32 {
	return atomic.LoadInt32(&wp.activeWorkers)
}

func (wp *WorkerPool[A, R]) WorkersCount() int {
	return wp.workersCount
}

// Run executes jobs and returns their results in job order. It only fails
// when ctx is cancelled before every job has been started.
func (wp *WorkerPool[A, R]) Run(ctx context.Context, jobs []Job[A, R]) ([]Result[R], error) {
	const op = "workers.Run"

	results := make([]Result[R], len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workersCount)

	for i, job := range jobs {
		i, job := i, job
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			atomic.AddInt32(&wp.activeWorkers, 1)
			defer atomic.AddInt32(&wp.activeWorkers, -1)

			if err := gctx.Err(); err != nil {
				return err
			}

			result := job.execute(gctx)
			results[i] = result

			if result.Err != nil {
				wp.log.Warn("Job failed",
					slog.String("job_id", string(job.Description.ID)),
					slog.String("job_type", string(job.Description.JobType)),
					sl.Err(result.Err),
				)
				if wp.recorder != nil {
					wp.recorder.RecordFailure(result.Duration)
				}
				return nil
			}

			wp.log.Debug("Job completed",
				slog.String("job_id", string(job.Description.ID)),
				slog.Duration("duration", result.Duration),
			)
			if wp.recorder != nil {
				wp.recorder.RecordSuccess(result.Duration)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return results, nil
}
