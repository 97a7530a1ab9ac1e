// Package background runs tasks detached from the request that started
// them, so slow work (quest generation, bulk assignment) never blocks a
// response. Each task's lifecycle is persisted as a job record; callers
// cannot await a result and observe progress through the status reads.
package background

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meshup-app/server/internal/models"
)

type Runner struct {
	logger *slog.Logger
	jobs   models.JobRepo
}

func NewRunner(logger *slog.Logger, jobs models.JobRepo) *Runner {
	return &Runner{
		logger: logger,
		jobs:   jobs,
	}
}

// Run executes taskFn on a detached goroutine. The job record moves
// PENDING -> RUNNING -> COMPLETED/FAILED; a panic inside the task is
// recovered and recorded as a failure.
func (r *Runner) Run(name string, taskFn func(ctx context.Context) (map[string]interface{}, error)) {
	ctx := context.Background()

	if err := r.jobs.UpsertJob(ctx, name, models.JobStatusPending); err != nil {
		r.logger.Error("Failed to record background job", "task", name, "error", err)
	}

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("Panic in background task", "task", name, "panic", rec)
				r.finish(ctx, name, models.JobStatusFailed, fmt.Sprintf("panic: %v", rec), nil)
			}
		}()

		start := time.Now()
		r.logger.Info("Starting background task", "task", name)
		if err := r.jobs.UpsertJob(ctx, name, models.JobStatusRunning); err != nil {
			r.logger.Error("Failed to mark job running", "task", name, "error", err)
		}

		result, err := taskFn(ctx)
		if err != nil {
			r.logger.Error("Background task failed", "task", name, "error", err, "duration", time.Since(start))
			r.finish(ctx, name, models.JobStatusFailed, err.Error(), result)
			return
		}

		r.logger.Info("Background task completed", "task", name, "result", result, "duration", time.Since(start))
		r.finish(ctx, name, models.JobStatusCompleted, "", result)
	}()
}

func (r *Runner) finish(ctx context.Context, name, status, errMsg string, result map[string]interface{}) {
	if err := r.jobs.FinishJob(ctx, name, status, errMsg, result); err != nil {
		r.logger.Error("Failed to finalize background job", "task", name, "error", err)
	}
}
