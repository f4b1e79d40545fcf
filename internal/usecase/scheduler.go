package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"ShortageWatcher/internal/ports"
)

// Scheduler wires the interval driver with the report pipelines.
type Scheduler struct {
	driver    ports.Scheduler
	pipelines []*Pipeline
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring checks.
func NewScheduler(driver ports.Scheduler, logger *slog.Logger, pipelines ...*Pipeline) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{driver: driver, pipelines: pipelines, logger: logger}
}

// Start registers the pipelines with the driver. Each trigger runs every
// pipeline in its own goroutine, so a stuck report cannot hold up the others;
// the job returns once all of them are done.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || len(s.pipelines) == 0 {
		return nil
	}

	job := func(trigger time.Time) {
		var wg sync.WaitGroup
		for _, p := range s.pipelines {
			wg.Add(1)
			go func(p *Pipeline) {
				defer wg.Done()
				s.run(ctx, p, trigger)
			}(p)
		}
		wg.Wait()
	}

	if err := s.driver.Start(ctx, job); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	return nil
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

// run keeps a panicking check from taking the scheduler down with it.
func (s *Scheduler) run(ctx context.Context, p *Pipeline, trigger time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("shortage check panicked", "report", p.Name(), "panic", fmt.Sprint(r))
		}
	}()
	p.Check(ctx, trigger)
}
