package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"QuotePress/internal/ports"
)

// CronScheduler fires a job on a standard five-field cron expression
// (descriptors such as "@hourly" and "@every 30m" work too). A tick that lands
// while the previous run is still going is skipped.
type CronScheduler struct {
	schedule cron.Schedule

	mu      sync.Mutex
	runner  *cron.Cron
	stopped chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler parses expr; an invalid expression is an error.
func NewCronScheduler(expr string) (*CronScheduler, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron %q: %w", expr, err)
	}
	return &CronScheduler{schedule: schedule}, nil
}

// Next reports when the schedule fires after t.
func (c *CronScheduler) Next(t time.Time) time.Time {
	return c.schedule.Next(t)
}

// Start registers job and starts the cron runner. Calling Start twice is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runner != nil {
		return nil
	}

	runner := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	runner.Schedule(c.schedule, cron.FuncJob(func() { job(time.Now()) }))
	runner.Start()

	stopped := make(chan struct{})
	c.runner, c.stopped = runner, stopped

	go func() {
		select {
		case <-ctx.Done():
			runner.Stop()
		case <-stopped:
		}
	}()
	return nil
}

// Stop halts the runner and waits for a running job to finish.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	runner, stopped := c.runner, c.stopped
	c.runner, c.stopped = nil, nil
	c.mu.Unlock()

	if runner == nil {
		return nil
	}
	close(stopped)

	select {
	case <-runner.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
