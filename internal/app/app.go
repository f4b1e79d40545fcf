package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ShortageWatcher/internal/config"
	"ShortageWatcher/internal/infrastructure/scheduler"
	"ShortageWatcher/internal/infrastructure/storage"
	"ShortageWatcher/internal/infrastructure/webhook"
	"ShortageWatcher/internal/ports"
	"ShortageWatcher/internal/report"
	"ShortageWatcher/internal/usecase"
	"ShortageWatcher/pkg/logger"
)

// Deps lets callers replace the driven adapters; nil fields get the production ones.
type Deps struct {
	Connector ports.ConnectionProvider
	Source    ports.ShortageSource
	Notifier  ports.Notifier
	Driver    ports.Scheduler
	Registry  *report.Registry
	Now       func() time.Time
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	connector ports.ConnectionProvider
	pipelines []*usecase.Pipeline
	scheduler *usecase.Scheduler
}

// New builds the application with SQL Server, webhook and cron adapters.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	return NewWithDeps(cfg, baseLogger, Deps{})
}

// NewWithDeps builds the application, filling in any adapter left nil.
func NewWithDeps(cfg config.Config, baseLogger *slog.Logger, deps Deps) (*Application, error) {
	if baseLogger == nil {
		baseLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Connector == nil {
		deps.Connector = storage.NewConnector(cfg.Database, baseLogger.With("component", "storage.connector"))
	}
	if deps.Source == nil {
		deps.Source = storage.NewShortageRepository(deps.Connector)
	}
	if deps.Notifier == nil {
		deps.Notifier = webhook.NewNotifier(cfg.Webhook)
	}
	if deps.Driver == nil {
		deps.Driver = scheduler.NewIntervalScheduler(
			cfg.Scheduler.Interval,
			cfg.Scheduler.Location(),
			scheduler.WithErrorLog(logger.New(baseLogger, "cron", slog.LevelError)),
		)
	}
	if deps.Registry == nil {
		deps.Registry = report.DefaultRegistry()
	}

	pipelines := make([]*usecase.Pipeline, 0, len(cfg.Reports))
	for _, name := range cfg.Reports {
		rep, err := deps.Registry.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("configure reports: %w", err)
		}
		pipelines = append(pipelines, usecase.NewPipeline(usecase.PipelineDeps{
			Report:   rep,
			Source:   deps.Source,
			Notifier: deps.Notifier,
			Interval: cfg.Scheduler.Interval,
			Location: cfg.Scheduler.Location(),
			Logger:   baseLogger.With("component", "pipeline"),
			Now:      deps.Now,
		}))
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger.With("component", "app"),
		connector: deps.Connector,
		pipelines: pipelines,
		scheduler: usecase.NewScheduler(deps.Driver, baseLogger.With("component", "scheduler"), pipelines...),
	}, nil
}

// Run announces startup, starts the checks and blocks until ctx is cancelled.
// On shutdown it waits for running checks, announces the stop and releases
// the database connection.
func (a *Application) Run(ctx context.Context) error {
	// checks already in flight finish even after a shutdown request
	jobCtx := context.WithoutCancel(ctx)

	for _, p := range a.pipelines {
		p.AnnounceStart(jobCtx)
	}

	if err := a.scheduler.Start(jobCtx); err != nil {
		_ = a.connector.Close()
		return err
	}
	a.logger.Info("watcher running", "reports", len(a.pipelines), "interval", a.cfg.Scheduler.Interval.String())

	<-ctx.Done()
	a.logger.Info("shutdown requested")

	a.shutdown(jobCtx)
	return nil
}

func (a *Application) shutdown(ctx context.Context) {
	timeout := a.cfg.Scheduler.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	stopCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.scheduler.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler did not stop cleanly", "error", err)
	}

	for _, p := range a.pipelines {
		p.AnnounceStop(ctx)
	}

	if err := a.connector.Close(); err != nil {
		a.logger.Error("close database failed", "error", err)
	}
	a.logger.Info("watcher stopped")
}
