package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ShortageWatcher/internal/domain"
	"ShortageWatcher/internal/ports"
	"ShortageWatcher/internal/report"
)

// PipelineDeps wires the driven adapters and report definition into one pipeline.
type PipelineDeps struct {
	Report   report.Report
	Source   ports.ShortageSource
	Notifier ports.Notifier
	Interval time.Duration
	Location *time.Location
	Logger   *slog.Logger
	Now      func() time.Time
}

// Pipeline runs one report: query, format, notify.
type Pipeline struct {
	report   report.Report
	source   ports.ShortageSource
	notifier ports.Notifier
	interval time.Duration
	location *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		report:   deps.Report,
		source:   deps.Source,
		notifier: deps.Notifier,
		interval: deps.Interval,
		location: deps.Location,
		logger:   deps.Logger,
		now:      deps.Now,
	}
	if p.location == nil {
		p.location = time.Local
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Name returns the report this pipeline runs.
func (p *Pipeline) Name() string {
	return p.report.Name
}

// AnnounceStart tells the channel the watcher is up.
func (p *Pipeline) AnnounceStart(ctx context.Context) {
	p.logger.Info("watcher started", "report", p.report.Name)
	p.notify(ctx, p.logger, p.report.Messages.Started)
}

// AnnounceStop tells the channel the watcher is going away.
func (p *Pipeline) AnnounceStop(ctx context.Context) {
	p.logger.Info("watcher stopping", "report", p.report.Name)
	p.notify(ctx, p.logger, p.report.Messages.Stopping)
}

// Check performs one run. Query failures replace the result message with the
// failure message; the completion message is sent in every case.
func (p *Pipeline) Check(ctx context.Context, trigger time.Time) domain.CheckOutcome {
	log := p.logger.With("report", p.report.Name, "run_id", uuid.NewString())
	outcome := domain.CheckOutcome{Report: p.report.Name, StartedAt: trigger}

	log.Info("shortage check started", "trigger", trigger.Format(time.RFC3339))
	p.notify(ctx, log, p.report.Messages.CheckStarting)

	rows, err := p.source.FetchShortages(ctx, p.report)
	if err != nil {
		outcome.Err = err
		log.Error("shortage check failed", "error", err)
		p.notify(ctx, log, p.report.Messages.Failed)
	} else {
		outcome.Rows = len(rows)
		log.Info("shortage rows fetched", "count", len(rows))
		p.notify(ctx, log, p.report.Format(rows))
	}

	outcome.NextRunAt = p.now().In(p.location).Add(p.interval)
	p.notify(ctx, log, p.report.Messages.CompletedAt(outcome.NextRunAt))

	log.Info("shortage check finished", "next_run", outcome.NextRunAt.Format("15:04"))
	return outcome
}

// notify never fails the caller: delivery errors are logged and dropped.
func (p *Pipeline) notify(ctx context.Context, log *slog.Logger, text string) {
	if p.notifier == nil {
		return
	}
	log.Debug("sending webhook message")
	if err := p.notifier.Publish(ctx, text); err != nil {
		log.Error("webhook message failed", "error", err)
		return
	}
	log.Debug("webhook message sent")
}
