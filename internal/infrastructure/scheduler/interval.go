package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ShortageWatcher/internal/ports"
)

// IntervalScheduler runs a job once on start and then every interval.
// Activations are independent: a slow run does not delay or suppress the next one.
type IntervalScheduler struct {
	interval time.Duration
	location *time.Location
	logger   cron.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	initial sync.WaitGroup
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// Option customises an IntervalScheduler.
type Option func(*IntervalScheduler)

// WithErrorLog routes cron errors and recovered tick panics to l.
func WithErrorLog(l *log.Logger) Option {
	return func(s *IntervalScheduler) {
		if l != nil {
			s.logger = cron.PrintfLogger(l)
		}
	}
}

// NewIntervalScheduler builds a scheduler; intervals under a second are rounded up by cron.
func NewIntervalScheduler(interval time.Duration, loc *time.Location, opts ...Option) *IntervalScheduler {
	if loc == nil {
		loc = time.Local
	}
	s := &IntervalScheduler{interval: interval, location: loc, logger: cron.DiscardLogger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the job and fires it immediately. Calling Start twice is a no-op.
func (s *IntervalScheduler) Start(_ context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if s.interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", s.interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(s.logger),
		cron.WithChain(cron.Recover(s.logger)),
	)
	c.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		job(time.Now().In(s.location))
	}))
	c.Start()
	s.cron = c

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		job(time.Now().In(s.location))
	}()

	return nil
}

// Stop halts future activations and waits for running jobs until ctx expires.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		<-c.Stop().Done()
		s.initial.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running checks: %w", ctx.Err())
	}
}
