package usecase

import (
	"context"

	"newstracker/internal/ports"
)

// Scheduler binds the recurring driver to the tracking pipeline and the
// filings job.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	filings  *FilingsJob
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, filings *FilingsJob) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, filings: filings}
}

// Start registers both jobs with the provided scheduler. The filings
// job runs after the tracking run in the same tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(runCtx context.Context) {
		_, _ = s.pipeline.Run(runCtx)
		if s.filings != nil {
			_, _ = s.filings.Run(runCtx)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
