package scheduler

import (
	"context"
	"time"
)

// Job is one scheduled execution; trigger is the tick that started it.
type Job func(ctx context.Context, trigger time.Time)

// IntervalScheduler repeats a job on a fixed period.
type IntervalScheduler struct {
	every time.Duration
	now   func() time.Time
}

// NewIntervalScheduler builds a scheduler. A non-positive period runs the job once.
func NewIntervalScheduler(every time.Duration) *IntervalScheduler {
	return &IntervalScheduler{every: every, now: time.Now}
}

// Run executes job immediately and then on every tick until ctx is done.
// Ticks that arrive while a job is still running are dropped.
func (s *IntervalScheduler) Run(ctx context.Context, job Job) error {
	if job == nil {
		return nil
	}

	job(ctx, s.now())
	if s.every <= 0 {
		return nil
	}

	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		select {
		case t := <-ticker.C:
			job(ctx, t)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
