package workers

import (
	"context"
	"time"
)

// Job runs ExecFn on Args. A is the job input, R its result.
type Job[A, R any] struct {
	Description JobDescriptor
	ExecFn      ExecutionFn[A, R]
	Args        A
}

type ExecutionFn[A, R any] func(ctx context.Context, args A) (R, error)

type JobID string
type JobType string
type JobMetadata map[string]string

type JobDescriptor struct {
	ID       JobID       `json:"id"`
	JobType  JobType     `json:"job_type"`
	Metadata JobMetadata `json:"metadata,omitempty"`
}

type Result[R any] struct {
	Value       R
	Err         error
	Description JobDescriptor
	Duration    time.Duration
}

func (j Job[A, R]) execute(ctx context.Context) Result[R] {
	start := time.Now()
	value, err := j.ExecFn(ctx, j.Args)
	if err != nil {
		return Result[R]{
			Err:         err,
			Description: j.Description,
			Duration:    time.Since(start),
		}
	}

	return Result[R]{
		Value:       value,
		Description: j.Description,
		Duration:    time.Since(start),
	}
}
